package main

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/filwallet/filsigner/pkg/config"
	"github.com/filwallet/filsigner/pkg/logger"
	"github.com/filwallet/filsigner/pkg/paych"
	"github.com/filwallet/filsigner/pkg/signer"
	"github.com/filwallet/filsigner/pkg/types"
	"github.com/filwallet/filsigner/pkg/wallet"
)

func main() {
	app := &cli.App{
		Name:  "filsigner",
		Usage: "Filecoin wallet signing toolkit",
		Description: `Offline key derivation, transaction signing and verification.

Keys are derived from BIP39 mnemonics over BIP44 paths; transactions and
payment-channel vouchers are signed with secp256k1 or BLS depending on the
sender address protocol. Nothing is stored and nothing touches the network.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable verbose logging",
				EnvVars: []string{config.EnvVerbose},
			},
		},
		Commands: []*cli.Command{
			mnemonicCommand(),
			deriveCommand(),
			recoverCommand(),
			signCommand(),
			verifyCommand(),
			voucherCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newLogger(c *cli.Context) (*zap.Logger, error) {
	return logger.New(c.Bool("verbose"))
}

func mnemonicCommand() *cli.Command {
	return &cli.Command{
		Name:  "mnemonic",
		Usage: "Generate a fresh 24-word English mnemonic",
		Action: func(c *cli.Context) error {
			mnemonic, err := wallet.GenerateMnemonic()
			if err != nil {
				return err
			}
			fmt.Println(mnemonic)
			return nil
		},
	}
}

func deriveCommand() *cli.Command {
	return &cli.Command{
		Name:  "derive",
		Usage: "Derive a key pair and address from a mnemonic",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mnemonic", Usage: "BIP39 mnemonic phrase", Required: true},
			&cli.StringFlag{
				Name:    "path",
				Usage:   "BIP44 derivation path",
				Value:   config.DefaultDerivationPath,
				EnvVars: []string{config.EnvPath},
			},
			&cli.StringFlag{Name: "password", Usage: "Optional seed password", Value: ""},
			&cli.StringFlag{
				Name:    "language",
				Usage:   "Mnemonic language code (en, zh-hans, zh-hant, fr, it, ja, ko, es)",
				Value:   "en",
				EnvVars: []string{config.EnvLanguage},
			},
		},
		Action: func(c *cli.Context) error {
			l, err := newLogger(c)
			if err != nil {
				return err
			}
			defer l.Sync() //nolint:errcheck

			key, err := wallet.Derive(c.String("mnemonic"), c.String("path"), c.String("password"), c.String("language"))
			if err != nil {
				return err
			}
			l.Debug("derived key", zap.String("path", c.String("path")))
			fmt.Printf("address:     %s\n", key.Address)
			fmt.Printf("private key: %s\n", base64.StdEncoding.EncodeToString(key.PrivateKey))
			fmt.Printf("public key:  %s\n", hex.EncodeToString(key.PublicKey))
			return nil
		},
	}
}

func recoverCommand() *cli.Command {
	return &cli.Command{
		Name:  "recover",
		Usage: "Rebuild a key pair and address from a raw private key",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "key", Usage: "Private key, base64", Required: true},
			&cli.StringFlag{
				Name:    "network",
				Usage:   "mainnet or testnet",
				Value:   string(config.NetworkMainnet),
				EnvVars: []string{config.EnvNetwork},
			},
			&cli.BoolFlag{Name: "bls", Usage: "Treat the key as a BLS secret instead of secp256k1"},
		},
		Action: func(c *cli.Context) error {
			raw, err := base64.StdEncoding.DecodeString(c.String("key"))
			if err != nil {
				return err
			}
			testnet, err := config.IsTestnet(config.NetworkName(c.String("network")))
			if err != nil {
				return err
			}

			var key *wallet.ExtendedKey
			if c.Bool("bls") {
				key, err = wallet.RecoverBLS(raw, testnet)
			} else {
				key, err = wallet.Recover(raw, testnet)
			}
			if err != nil {
				return err
			}
			fmt.Printf("address:    %s\n", key.Address)
			fmt.Printf("public key: %s\n", hex.EncodeToString(key.PublicKey))
			return nil
		},
	}
}

func signCommand() *cli.Command {
	return &cli.Command{
		Name:  "sign",
		Usage: "Sign a CBOR-encoded transaction",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "message", Usage: "Unsigned transaction, CBOR hex", Required: true},
			&cli.StringFlag{Name: "key", Usage: "Private key, base64", Required: true},
			&cli.StringFlag{
				Name:    "network",
				Usage:   "mainnet or testnet",
				Value:   string(config.NetworkMainnet),
				EnvVars: []string{config.EnvNetwork},
			},
		},
		Action: func(c *cli.Context) error {
			l, err := newLogger(c)
			if err != nil {
				return err
			}
			defer l.Sync() //nolint:errcheck

			rawMsg, err := hex.DecodeString(c.String("message"))
			if err != nil {
				return err
			}
			key, err := base64.StdEncoding.DecodeString(c.String("key"))
			if err != nil {
				return err
			}
			testnet, err := config.IsTestnet(config.NetworkName(c.String("network")))
			if err != nil {
				return err
			}

			tx, err := types.Parse(rawMsg, testnet)
			if err != nil {
				return err
			}
			signed, err := signer.Sign(&tx.Message, key)
			if err != nil {
				return err
			}
			out, err := signed.Serialize()
			if err != nil {
				return err
			}
			cid, err := signed.Cid()
			if err != nil {
				return err
			}
			l.Debug("signed message", zap.String("cid", cid.String()))
			fmt.Println(hex.EncodeToString(out))
			return nil
		},
	}
}

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Verify a signed CBOR-encoded transaction",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "message", Usage: "Signed transaction, CBOR hex", Required: true},
		},
		Action: func(c *cli.Context) error {
			raw, err := hex.DecodeString(c.String("message"))
			if err != nil {
				return err
			}
			tx, err := types.Parse(raw, true)
			if err != nil {
				return err
			}
			if !tx.Signed() {
				return fmt.Errorf("transaction carries no signature")
			}

			msgRaw, err := tx.Message.Serialize()
			if err != nil {
				return err
			}
			ok, err := signer.Verify(*tx.Signature, msgRaw)
			if err != nil {
				return err
			}
			fmt.Println(ok)
			return nil
		},
	}
}

func voucherCommand() *cli.Command {
	return &cli.Command{
		Name:  "voucher",
		Usage: "Create, sign and verify payment channel vouchers",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Build an unsigned voucher",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "channel", Usage: "Payment channel address", Required: true},
					&cli.StringFlag{Name: "amount", Usage: "Voucher amount, base 10", Required: true},
					&cli.Uint64Flag{Name: "lane", Usage: "Voucher lane"},
					&cli.Uint64Flag{Name: "nonce", Usage: "Voucher nonce"},
					&cli.Int64Flag{Name: "time-lock-min", Usage: "Minimum redemption epoch"},
					&cli.Int64Flag{Name: "time-lock-max", Usage: "Maximum redemption epoch"},
					&cli.Int64Flag{Name: "min-settle-height", Usage: "Minimum settlement height"},
				},
				Action: func(c *cli.Context) error {
					out, err := paych.CreateVoucher(
						c.String("channel"),
						c.Int64("time-lock-min"),
						c.Int64("time-lock-max"),
						c.String("amount"),
						c.Uint64("lane"),
						c.Uint64("nonce"),
						c.Int64("min-settle-height"),
					)
					if err != nil {
						return err
					}
					fmt.Println(out)
					return nil
				},
			},
			{
				Name:  "sign",
				Usage: "Sign an encoded voucher",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "voucher", Usage: "Voucher, base64", Required: true},
					&cli.StringFlag{Name: "key", Usage: "Private key, base64", Required: true},
				},
				Action: func(c *cli.Context) error {
					key, err := base64.StdEncoding.DecodeString(c.String("key"))
					if err != nil {
						return err
					}
					out, err := paych.SignVoucher(c.String("voucher"), key)
					if err != nil {
						return err
					}
					fmt.Println(out)
					return nil
				},
			},
			{
				Name:  "verify",
				Usage: "Verify an encoded voucher's signature",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "voucher", Usage: "Voucher, base64", Required: true},
					&cli.StringFlag{Name: "signer", Usage: "Signer address", Required: true},
				},
				Action: func(c *cli.Context) error {
					ok, err := paych.VerifyVoucherSignature(c.String("voucher"), c.String("signer"))
					if err != nil {
						return err
					}
					fmt.Println(ok)
					return nil
				},
			},
		},
	}
}

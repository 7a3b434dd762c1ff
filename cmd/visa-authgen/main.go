// Command visa-authgen reads a transaction record from a YAML file,
// assembles the ISO 8583 0100 authorization message, and writes it out
// as hex (or raw bytes with -out), optionally framed with a length
// indicator for transports that expect one.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	iso8583 "github.com/mkadit/visa-authgen"
)

// transactionFile mirrors the record field names of the YAML input.
type transactionFile struct {
	PAN                    string `yaml:"pan"`
	ProcessingCode         string `yaml:"processing_code"`
	TransactionAmount      int64  `yaml:"transaction_amount"`
	STAN                   string `yaml:"stan"`
	LocalTransactionTime   string `yaml:"local_transaction_time"`
	LocalTransactionDate   string `yaml:"local_transaction_date"`
	ExpirationDate         string `yaml:"expiration_date"`
	POSEntryMode           string `yaml:"pos_entry_mode"`
	AcquiringInstitutionID string `yaml:"acquiring_institution_id"`
	PINData                string `yaml:"pin_data"`
	ChipData               string `yaml:"chip_data"`
}

func main() {
	viper.SetEnvPrefix("visa_authgen")
	viper.AutomaticEnv()
	viper.SetDefault("frame", "none")
	viper.SetDefault("debug", false)

	in := flag.String("in", "", "transaction YAML file (required)")
	out := flag.String("out", "", "write raw message bytes to this file instead of hex to stdout")
	frame := flag.String("frame", viper.GetString("frame"), "length indicator: none, binary, ascii")
	debug := flag.Bool("debug", viper.GetBool("debug"), "enable debug logging")
	flag.Parse()

	logger := newLogger(*debug)
	defer logger.Sync()

	if *in == "" {
		logger.Fatal("missing -in transaction file")
	}

	tx, err := loadTransaction(*in)
	if err != nil {
		logger.Fatal("invalid transaction record", zap.String("file", *in), zap.Error(err))
	}

	asm := iso8583.NewAssembler(iso8583.DefaultRegistry())
	msg, err := asm.Build(tx)
	if err != nil {
		logger.Fatal("assembly failed", zap.Error(err))
	}

	mliType, err := parseFrame(*frame)
	if err != nil {
		logger.Fatal("bad -frame value", zap.String("frame", *frame))
	}
	framed, err := iso8583.Frame(msg, mliType)
	if err != nil {
		logger.Fatal("framing failed", zap.Error(err))
	}

	logger.Debug("message assembled",
		zap.Int("bytes", len(msg)),
		zap.Int("framed_bytes", len(framed)))

	if *out != "" {
		if err := os.WriteFile(*out, framed, 0o644); err != nil {
			logger.Fatal("write failed", zap.String("file", *out), zap.Error(err))
		}
		logger.Info("message written", zap.String("file", *out), zap.Int("bytes", len(framed)))
		return
	}
	fmt.Println(hex.EncodeToString(framed))
}

func loadTransaction(path string) (*iso8583.Transaction, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f transactionFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}

	var opts []iso8583.TransactionOption
	if f.ExpirationDate != "" {
		opts = append(opts, iso8583.WithExpiry(f.ExpirationDate))
	}
	if f.PINData != "" {
		opts = append(opts, iso8583.WithPINBlock(f.PINData))
	}
	if f.ChipData != "" {
		opts = append(opts, iso8583.WithChipData(f.ChipData))
	}
	return iso8583.NewTransaction(
		f.PAN, f.ProcessingCode, f.TransactionAmount,
		f.STAN, f.LocalTransactionTime, f.LocalTransactionDate,
		f.POSEntryMode, f.AcquiringInstitutionID,
		opts...,
	)
}

func parseFrame(s string) (iso8583.MLIType, error) {
	switch s {
	case "none", "":
		return iso8583.MLINone, nil
	case "binary":
		return iso8583.MLIBinary, nil
	case "ascii":
		return iso8583.MLIASCII, nil
	}
	return iso8583.MLINone, fmt.Errorf("unknown frame type %q", s)
}

func newLogger(debug bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	return logger
}

package main

import (
	"fmt"
	"log/slog"
	"os"

	iac "github.com/glimte/iac-go"
	"github.com/glimte/iac-go/contracts"
	"github.com/glimte/iac-go/validation"
	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "iac",
		Short: "Encode and decode IAC messages",
		Long: `iac converts inter-app messages between JSON and the transport strings
carried by QR codes and deep links. It supports the v2 (RLP) and v3 (CBOR)
envelopes.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildTime),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Global flags
	var (
		configPath string
		verbose    bool
		envelope   int
	)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().IntVarP(&envelope, "envelope", "e", 0, "Envelope version to produce (2 or 3, default from config)")

	newSerializer := func(cmd *cobra.Command) (*iac.Serializer, error) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

		cfg := iac.DefaultConfig()
		if configPath != "" {
			loaded, err := iac.LoadConfig(configPath)
			if err != nil {
				return nil, err
			}
			cfg = loaded
		}
		if envelope != 0 {
			cfg.Version = envelope
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}

		opts := append(cfg.Options(), iac.WithLogger(logger))
		s, err := iac.NewSerializerWithOptions(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create serializer: %w", err)
		}
		return s, nil
	}

	// Encode command
	var inputPath string
	encodeCmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode JSON messages into envelope strings",
		Long: `Reads a JSON message or array of messages and prints one envelope string per
line. Each message has an id, a type (name or number), a protocol and a payload.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSerializer(cmd)
			if err != nil {
				return err
			}

			data, err := readInput(cmd, inputPath)
			if err != nil {
				return err
			}
			messages, err := parseMessages(data)
			if err != nil {
				return err
			}

			envelopes, err := s.Serialize(messages...)
			if err != nil {
				return fmt.Errorf("failed to encode: %w", err)
			}
			for _, e := range envelopes {
				fmt.Fprintln(cmd.OutOrStdout(), e)
			}
			return nil
		},
	}
	encodeCmd.Flags().StringVarP(&inputPath, "file", "f", "-", "Input file, - for stdin")

	// Decode command
	decodeCmd := &cobra.Command{
		Use:   "decode [envelopes...]",
		Short: "Decode envelope strings into JSON messages",
		Long:  "Decodes the given envelope strings, or one per line from stdin when none are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSerializer(cmd)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				data, err := readInput(cmd, "-")
				if err != nil {
					return err
				}
				args = splitLines(data)
			}

			result, err := s.Deserialize(args...)
			if err != nil {
				return fmt.Errorf("failed to decode: %w", err)
			}
			return writeJSON(cmd, newDecodeOutput(result))
		},
	}

	// Schema command
	schemaCmd := &cobra.Command{
		Use:   "schema <type> [protocol]",
		Short: "Print the schemas a message resolves to",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSerializer(cmd)
			if err != nil {
				return err
			}

			messageType, err := contracts.ParseMessageType(args[0])
			if err != nil {
				return err
			}
			protocol := ""
			if len(args) > 1 {
				protocol = args[1]
			}

			registry, err := s.Registry(s.Version())
			if err != nil {
				return err
			}
			entries, err := registry.Resolve(messageType, protocol)
			if err != nil {
				return err
			}
			return writeJSON(cmd, newSchemaOutput(messageType, protocol, entries))
		},
	}

	// Validate command
	var (
		signed   bool
		protocol string
	)
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a transaction payload for a protocol",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSerializer(cmd)
			if err != nil {
				return err
			}

			data, err := readInput(cmd, inputPath)
			if err != nil {
				return err
			}
			payload, err := decodeJSON(data)
			if err != nil {
				return err
			}

			validator := s.Validator(protocol)
			var errs []validation.ValidationError
			if signed {
				errs = validator.ValidateSigned(cmd.Context(), payload)
			} else {
				errs = validator.ValidateUnsigned(cmd.Context(), payload)
			}
			if err := writeJSON(cmd, errs); err != nil {
				return err
			}
			if len(errs) > 0 {
				return fmt.Errorf("payload has %d validation errors", len(errs))
			}
			return nil
		},
	}
	validateCmd.Flags().StringVarP(&inputPath, "file", "f", "-", "Input file, - for stdin")
	validateCmd.Flags().StringVarP(&protocol, "protocol", "p", "", "Protocol identifier")
	validateCmd.Flags().BoolVar(&signed, "signed", false, "Validate a signed payload")
	_ = validateCmd.MarkFlagRequired("protocol")

	rootCmd.AddCommand(encodeCmd, decodeCmd, schemaCmd, validateCmd)
	return rootCmd
}

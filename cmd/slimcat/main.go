package main

import (
	"bufio"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/oy3o/serial"
	"github.com/oy3o/serial/slim"
	"go.uber.org/zap"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch command := os.Args[1]; command {
	case "types":
		err = typesCommand(os.Args[2:], os.Stdout)
	case "encode":
		err = encodeCommand(os.Args[2:], os.Stdout)
	case "decode":
		err = decodeCommand(os.Args[2:], os.Stdin, os.Stdout)
	case "config":
		err = configCommand(os.Args[2:], os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "\nCommands:\n")
	fmt.Fprintf(os.Stderr, "  types   List the types a format supports\n")
	fmt.Fprintf(os.Stderr, "  encode  Encode kind=literal pairs and print them as hex\n")
	fmt.Fprintf(os.Stderr, "  decode  Decode hex from -hex or stdin as the listed kinds\n")
	fmt.Fprintf(os.Stderr, "  config  Write the default configuration file\n")
	fmt.Fprintf(os.Stderr, "\nKinds: %s\n", strings.Join(kindNames(), ", "))
	fmt.Fprintf(os.Stderr, "\nRun '%s <command> -h' for help on a specific command.\n", os.Args[0])
}

// commonFlags registers the flags shared by encode and decode.
func commonFlags(fs *flag.FlagSet) (configPath *string, verbose *bool) {
	configPath = fs.String("config", "", "Path to configuration file")
	verbose = fs.Bool("v", false, "Verbose output")
	return
}

// loadOptions reads the optional config file and overlays SERIAL_* variables.
func loadOptions(configPath string, verbose bool) (serial.Options, error) {
	if verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return serial.Options{}, err
		}
		serial.SetLogger(l)
	}
	opts := serial.DefaultOptions()
	if configPath != "" {
		var err error
		if opts, err = serial.LoadConfig(configPath); err != nil {
			return serial.Options{}, err
		}
	}
	return serial.OptionsFromEnv(opts)
}

func typesCommand(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("types", flag.ExitOnError)
	name := fs.String("format", slim.Name, "Format to list")
	fs.Parse(args)

	inv, err := serial.LookupFormat(*name)
	if err != nil {
		return fmt.Errorf("%w (registered: %s)", err, strings.Join(serial.Formats(), ", "))
	}
	tw := bufio.NewWriter(out)
	defer tw.Flush()
	fmt.Fprintf(tw, "Format %s:\n", inv.Name())
	for _, e := range inv.Entries() {
		class := "value"
		if e.Ref {
			class = "ref"
		}
		fmt.Fprintf(tw, "  %-22s %-5s %-26s %s\n", e.Type, class, e.WriteName, e.ReadName)
	}
	return nil
}

func encodeCommand(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	configPath, verbose := commonFlags(fs)
	fs.Parse(args)

	opts, err := loadOptions(*configPath, *verbose)
	if err != nil {
		return err
	}
	values := make([]any, 0, fs.NArg())
	for _, arg := range fs.Args() {
		kind, literal, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("argument %q is not kind=literal", arg)
		}
		v, err := parseLiteral(kind, literal)
		if err != nil {
			return err
		}
		values = append(values, v)
	}
	data, err := encodeValues(opts, values)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, hex.EncodeToString(data))
	return nil
}

func decodeCommand(args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	configPath, verbose := commonFlags(fs)
	hexInput := fs.String("hex", "", "Hex input; read from stdin when empty")
	fs.Parse(args)

	opts, err := loadOptions(*configPath, *verbose)
	if err != nil {
		return err
	}
	text := *hexInput
	if text == "" {
		b, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		text = string(b)
	}
	data, err := hex.DecodeString(strings.Join(strings.Fields(text), ""))
	if err != nil {
		return fmt.Errorf("invalid hex input: %w", err)
	}
	values, err := decodeValues(opts, data, fs.Args())
	if err != nil {
		return err
	}
	for i, v := range values {
		fmt.Fprintf(out, "%s = %s\n", fs.Arg(i), formatValue(v))
	}
	return nil
}

func configCommand(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	output := fs.String("output", "serial.yaml", "Output file path")
	force := fs.Bool("force", false, "Overwrite existing configuration file")
	fs.Parse(args)

	if !*force {
		if _, err := os.Stat(*output); err == nil {
			return fmt.Errorf("configuration file %s already exists, use -force to overwrite", *output)
		}
	}
	if err := serial.SaveConfig(serial.DefaultOptions(), *output); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %s\n", *output)
	return nil
}

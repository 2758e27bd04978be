// Command bureau-extract prints the normalized content of an Experian XML credit
// report, or mints a bearer token for the HTTP API.
//
// Usage:
//
//	bureau-extract [-format json|yaml] [-output path] report.xml
//	bureau-extract -mint-token -subject NAME
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/username/creditreport/src/config"
	"github.com/username/creditreport/src/models"
	"github.com/username/creditreport/src/parsers/experian"
	"github.com/username/creditreport/src/parsers/parsererror"
	"github.com/username/creditreport/src/security"
	"gopkg.in/yaml.v3"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "bureau-extract:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("bureau-extract", flag.ContinueOnError)
	fs.SetOutput(stderr)
	format := fs.String("format", "json", "output format: json or yaml")
	output := fs.String("output", "", "write to this file instead of stdout")
	mintToken := fs.Bool("mint-token", false, "print a bearer token signed with JWT_SECRET and exit")
	subject := fs.String("subject", "", "token subject, used with -mint-token")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *mintToken {
		return printToken(*subject, stdout)
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("exactly one input file is required")
	}

	raw, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}

	report, err := experian.NewExtractor().Extract(raw)
	if err != nil {
		if kind, ok := parsererror.KindOf(err); ok {
			return fmt.Errorf("%s: %w", kind, err)
		}
		return err
	}

	body, err := encode(report, *format)
	if err != nil {
		return err
	}

	if *output == "" {
		_, err = stdout.Write(body)
		return err
	}
	return os.WriteFile(*output, body, 0o644)
}

func encode(report *models.ParsedReport, format string) ([]byte, error) {
	switch format {
	case "json":
		body, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(body, '\n'), nil
	case "yaml":
		return yaml.Marshal(report)
	default:
		return nil, fmt.Errorf("unknown format %q, expected json or yaml", format)
	}
}

func printToken(subject string, stdout io.Writer) error {
	if subject == "" {
		return errors.New("-subject is required with -mint-token")
	}

	config.LoadConfig()
	if !config.Cfg.AuthEnabled() {
		return errors.New("JWT_SECRET is not set")
	}
	if err := config.Cfg.Validate(); err != nil {
		return err
	}

	token, err := security.NewAuthService(config.Cfg.JWTSecret, config.Cfg.TokenExpiry).GenerateToken(subject)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, token)
	return err
}

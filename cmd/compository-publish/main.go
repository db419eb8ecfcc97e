// Command compository-publish publishes a DNA working directory to a
// compository cell: every zome's wasm and UI bundle, the DNA template, and
// the instantiated DNA.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"xdao.co/compository/conductor"
	"xdao.co/compository/config"
	"xdao.co/compository/dna"
	"xdao.co/compository/internal/logger"
	"xdao.co/compository/internal/printer"
	"xdao.co/compository/keys"
	"xdao.co/compository/ledger"
	"xdao.co/compository/model"
	"xdao.co/compository/publish"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type usageError struct{ error }

func run(args []string, out io.Writer, errOut io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd(out, errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var ue usageError
	if errors.As(err, &ue) {
		fmt.Fprintf(errOut, "%v\n\n%s", ue.error, cmd.UsageString())
		return 2
	}
	return 1
}

type flags struct {
	configPath string
	workDir    string
	dnaHash    string
	url        string
	appID      string

	chunkSize         int
	uploadConcurrency int
	zomeConcurrency   int
	ledgerDir         string
	keyFile           string
	keyAlgorithm      string
	logLevel          string
	logFormat         string
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "compository-publish",
		Short: "Publish a DNA to a compository",
		Long: `compository-publish uploads the zomes of the DNA in the working directory
to the compository cell of a running conductor, then publishes the DNA
template and the instantiated DNA.`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageError{fmt.Errorf("unexpected arguments %q", args)}
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return usageError{err}
			}
			return publishDna(cmd.Context(), cfg, printer.New(out, errOut), errOut)
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError{err} })

	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "YAML config file")
	fl.StringVarP(&f.workDir, "workdir", "w", "", "DNA working directory containing dna.json")
	fl.StringVarP(&f.dnaHash, "compository-dna-hash", "c", "", "DNA hash of the compository cell")
	fl.StringVarP(&f.url, "url", "u", "", "conductor app interface URL")
	fl.StringVarP(&f.appID, "installed-app-id", "i", "", "installed app id holding the compository cell")
	fl.IntVar(&f.chunkSize, "chunk-size", 0, "maximum bytes per uploaded chunk")
	fl.IntVar(&f.uploadConcurrency, "upload-concurrency", 0, "chunks uploaded at once per zome")
	fl.IntVar(&f.zomeConcurrency, "zome-concurrency", 0, "zomes published at once")
	fl.StringVar(&f.ledgerDir, "ledger-dir", "", "directory recording completed calls so a rerun resumes")
	fl.StringVar(&f.keyFile, "signing-key", "", "file holding a hex seed used to sign zome calls")
	fl.StringVar(&f.keyAlgorithm, "signing-algorithm", "", "signing algorithm: ed25519 or dilithium3")
	fl.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	fl.StringVar(&f.logFormat, "log-format", "", "text or json")
	return cmd
}

// loadConfig layers flags that were set over the config file and
// environment.
func loadConfig(cmd *cobra.Command, f flags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	set := cmd.Flags().Changed
	if set("workdir") {
		cfg.WorkDir = f.workDir
	}
	if set("compository-dna-hash") {
		cfg.CompositoryDnaHash = f.dnaHash
	}
	if set("url") {
		cfg.URL = f.url
	}
	if set("installed-app-id") {
		cfg.InstalledAppID = f.appID
	}
	if set("chunk-size") {
		cfg.Upload.ChunkSize = f.chunkSize
	}
	if set("upload-concurrency") {
		cfg.Upload.UploadConcurrency = f.uploadConcurrency
	}
	if set("zome-concurrency") {
		cfg.Upload.ZomeConcurrency = f.zomeConcurrency
	}
	if set("ledger-dir") {
		cfg.LedgerDir = f.ledgerDir
	}
	if set("signing-key") {
		cfg.Signing.KeyFile = f.keyFile
	}
	if set("signing-algorithm") {
		cfg.Signing.Algorithm = f.keyAlgorithm
	}
	if set("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if set("log-format") {
		cfg.Log.Format = f.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func publishDna(ctx context.Context, cfg *config.Config, pr *printer.Printer, logOut io.Writer) error {
	log := logger.New(logOut, cfg.Log.Level, cfg.Log.Format)

	file, err := dna.Load(cfg.WorkDir)
	if err != nil {
		return pr.Error("Could not read the DNA", err.Error(), []string{"Check that --workdir points at a directory with dna.json"})
	}
	if file.Descriptor.GeneratedUUID {
		log.Warn("dna descriptor has no uuid, generated one", "uuid", file.Def.UUID)
	}
	pkg, err := file.Package()
	if err != nil {
		return pr.Error("Could not compile the DNA", err.Error(), nil)
	}

	var signer keys.Signer
	if cfg.Signing.KeyFile != "" {
		if signer, err = keys.LoadSigner(cfg.Signing.KeyFile, cfg.Signing.Algorithm); err != nil {
			return pr.Error("Could not load the signing key", err.Error(), nil)
		}
	}

	client, err := conductor.Dial(cfg.URL, conductor.DialOptions{
		Timeout:     cfg.Timeout.Dial,
		MaxMsgBytes: cfg.MaxMsgBytes,
		Signer:      signer,
	})
	if err != nil {
		return pr.Error("Could not connect to the conductor", err.Error(), []string{"Check that the conductor is running and --url is its app interface"})
	}
	defer client.Close()
	client.Timeout = cfg.Timeout.Call
	pr.Info("Connected to the conductor at %s", cfg.URL)

	cell, err := client.ResolveCell(ctx, cfg.InstalledAppID, cfg.CompositoryDnaHash)
	if err != nil {
		return pr.Error("Could not find the compository cell", err.Error(), suggestions(err))
	}
	pr.Info("Connected to compository with %s", cell)

	opts := publish.Options{
		ChunkSize:         cfg.Upload.ChunkSize,
		UploadConcurrency: cfg.Upload.UploadConcurrency,
		ZomeConcurrency:   cfg.Upload.ZomeConcurrency,
		Reporter:          pr,
		Logger:            log,
	}
	if cfg.LedgerDir != "" {
		led, err := ledger.OpenForCell(cfg.LedgerDir, cell.DnaHash, cell.AgentPubKey)
		if err != nil {
			return pr.Error("Could not open the ledger", err.Error(), nil)
		}
		opts.Ledger = led
		log.Debug("ledger enabled", "dir", led.Root())
	}
	pub := publish.NewPublisher(client, cell, opts)
	pr.Step("Publishing %s (%d zomes)", pkg.Name, len(pkg.Zomes))
	res, err := publish.NewPipeline(pub, cfg.Timeout.Deadline).Run(ctx, pkg)
	if err != nil {
		return pr.Error("Publish failed", err.Error(), suggestions(err))
	}
	log.Info("publish complete", "run_id", res.RunID, "template", res.TemplateHash, "dna_hash", res.DnaHash)
	return nil
}

func suggestions(err error) []string {
	switch model.KindOf(err) {
	case model.KindConnection:
		return []string{"Check that the conductor is still running, or raise the call timeout"}
	case model.KindNotFound:
		return []string{"Check --installed-app-id and --compository-dna-hash against the conductor's installed apps"}
	case model.KindProtocolMismatch:
		return []string{"Check that the conductor and the compository DNA match this publisher's version"}
	default:
		return nil
	}
}

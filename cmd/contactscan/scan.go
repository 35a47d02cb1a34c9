package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/contactscan/internal/config"
	"github.com/nao1215/contactscan/internal/crawler"
	"github.com/nao1215/contactscan/internal/database"
	"github.com/nao1215/contactscan/internal/domains"
	"github.com/nao1215/contactscan/internal/model"
	"github.com/nao1215/contactscan/internal/pipeline"
	"github.com/nao1215/contactscan/internal/record"
	"github.com/nao1215/contactscan/internal/report"
	"github.com/nao1215/contactscan/internal/source"
	"github.com/nao1215/contactscan/internal/verify"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Discover, verify and reduce contact emails",
		Long: `Scan runs the discovery pipeline over a set of profiles.

Each identity goes through four steps:
- bio: addresses written in the bio, including "name [at] domain [dot] com"
- crawl: the external URL, then up to --max-deep-links personal sites it links to
- guess: conventional addresses on personal domains that have an MX record
- verify: MX lookup and, with --smtp-verify, an SMTP RCPT probe

Profiles that cannot be found produce a "profile_error" placeholder row.
The candidate log is streamed to --out as identities complete; the JSON dump,
the reduced log and the optional Markdown summary are written at the end.

Examples:
  # Scan every profile in a JSON export
  contactscan scan --profiles profiles.json

  # Scan selected handles with SMTP verification
  contactscan scan -p profiles.csv -u handles.txt --smtp-verify

  # Four identities at once, one second apart, with a Markdown summary
  contactscan scan -p profiles.yaml --concurrency 4 --delay 1s --markdown summary.md`,
		Args: cobra.NoArgs,
		RunE: runScanCmd,
	}

	// Input flags
	cmd.Flags().StringP("profiles", "p", "", "Profile file (JSON, YAML or CSV)")
	cmd.Flags().StringP("usernames", "u", "",
		"Handle list, one per line (default: every profile in file order)")

	// Output flags
	cmd.Flags().StringP("out", "o", config.DefaultOutFile, "Candidate log CSV")
	cmd.Flags().String("json", config.DefaultJSONFile, "Candidate JSON dump (empty to skip)")
	cmd.Flags().String("clean-out", config.DefaultCleanFile, "Reduced log CSV (empty to skip)")
	cmd.Flags().StringP("markdown", "m", "", "Markdown run summary")

	// Discovery flags
	cmd.Flags().Int64("max-site-bytes", config.DefaultMaxSiteBytes,
		"Skip pages larger than this many bytes")
	cmd.Flags().Int("max-deep-links", config.DefaultMaxDeepLinks,
		"Personal sites visited per identity (0 disables the deep crawl)")
	cmd.Flags().Duration("delay", config.DefaultInterRequestDelay,
		"Minimum spacing between identities")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency, "Identities processed at once")
	cmd.Flags().Int("deep-concurrency", config.DefaultDeepConcurrency,
		"Deep-crawl fetches in flight per identity")
	cmd.Flags().Duration("head-timeout", config.DefaultHeadTimeout, "Timeout for the size probe")
	cmd.Flags().Duration("fetch-timeout", config.DefaultFetchTimeout, "Timeout for a page download")
	cmd.Flags().String("user-agent", config.DefaultUserAgent, "HTTP User-Agent")

	// Verification flags
	cmd.Flags().Bool("smtp-verify", false, "Probe mailboxes with SMTP RCPT TO")
	cmd.Flags().Duration("dns-timeout", config.DefaultDNSTimeout, "Timeout for one MX lookup")
	cmd.Flags().Duration("smtp-timeout", config.DefaultSMTPTimeout, "Timeout for one SMTP session")
	cmd.Flags().Int("smtp-port", config.DefaultSMTPPort, "SMTP port of mail exchangers")
	cmd.Flags().String("smtp-from", config.DefaultSMTPFrom, "Envelope sender of RCPT probes")
	cmd.Flags().String("helo", config.DefaultHELOName, "Name announced in HELO")
	cmd.Flags().String("dns-server", "", "DNS server for MX lookups (default: /etc/resolv.conf)")
	cmd.Flags().String("smtp-proxy", "", "SOCKS5 proxy for SMTP probes (host:port)")

	// History flags
	cmd.Flags().Bool("no-db", false, "Do not save the run to the history database")
	cmd.Flags().String("db-dir", "", "History database directory (default: XDG data directory)")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd)
	slog.SetDefault(logger)

	return runScan(commandContext(cmd), cfg, logger, cmd.OutOrStdout())
}

// buildConfig creates a Config from the configuration file and the flags
// the user set.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	for name, dst := range map[string]*string{
		"profiles":  &cfg.ProfilesFile,
		"usernames": &cfg.UsernamesFile,
		"out":       &cfg.OutFile,
		"json":      &cfg.JSONFile,
		"clean-out": &cfg.CleanFile,
		"markdown":  &cfg.MarkdownFile,
	} {
		if *dst, err = flags.GetString(name); err != nil {
			return nil, err
		}
	}

	overrides := []error{
		override(flags, "max-site-bytes", &cfg.MaxSiteBytes, flags.GetInt64),
		override(flags, "max-deep-links", &cfg.MaxDeepLinks, flags.GetInt),
		override(flags, "delay", &cfg.InterRequestDelay, flags.GetDuration),
		override(flags, "concurrency", &cfg.Concurrency, flags.GetInt),
		override(flags, "deep-concurrency", &cfg.DeepConcurrency, flags.GetInt),
		override(flags, "head-timeout", &cfg.HeadTimeout, flags.GetDuration),
		override(flags, "fetch-timeout", &cfg.FetchTimeout, flags.GetDuration),
		override(flags, "user-agent", &cfg.UserAgent, flags.GetString),
		override(flags, "smtp-verify", &cfg.SMTPVerify, flags.GetBool),
		override(flags, "dns-timeout", &cfg.DNSTimeout, flags.GetDuration),
		override(flags, "smtp-timeout", &cfg.SMTPTimeout, flags.GetDuration),
		override(flags, "smtp-port", &cfg.SMTPPort, flags.GetInt),
		override(flags, "smtp-from", &cfg.SMTPFrom, flags.GetString),
		override(flags, "helo", &cfg.HELOName, flags.GetString),
		override(flags, "dns-server", &cfg.DNSServer, flags.GetString),
		override(flags, "smtp-proxy", &cfg.SMTPProxy, flags.GetString),
		override(flags, "db-dir", &cfg.DBDir, flags.GetString),
	}
	if err := errors.Join(overrides...); err != nil {
		return nil, err
	}

	noDB, err := flags.GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB

	return cfg, nil
}

// scanOutputs holds the output files, all created before any identity is
// processed so that an unwritable path fails the run up front.
type scanOutputs struct {
	out      *os.File
	json     *os.File
	clean    *os.File
	markdown *os.File
}

// openOutputs creates every configured output file.
func openOutputs(cfg *config.Config) (*scanOutputs, error) {
	outputs := &scanOutputs{}
	for _, o := range []struct {
		path string
		dst  **os.File
	}{
		{cfg.OutFile, &outputs.out},
		{cfg.JSONFile, &outputs.json},
		{cfg.CleanFile, &outputs.clean},
		{cfg.MarkdownFile, &outputs.markdown},
	} {
		if o.path == "" {
			continue
		}
		f, err := createOutputFile(o.path)
		if err != nil {
			outputs.Close()
			return nil, err
		}
		*o.dst = f
	}
	return outputs, nil
}

// Close closes every open output file.
func (o *scanOutputs) Close() {
	for _, f := range []*os.File{o.out, o.json, o.clean, o.markdown} {
		if f != nil {
			_ = f.Close() //nolint:errcheck // Best effort cleanup
		}
	}
}

// createOutputFile creates or truncates path, creating parent directories.
// Logs contain contact data, so files are only readable by the owner.
func createOutputFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

// loadInputs reads the profile source and the handles to process.
func loadInputs(cfg *config.Config) (*source.FileSource, []string, error) {
	src, err := source.LoadFile(cfg.ProfilesFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load profiles: %w", err)
	}

	if cfg.UsernamesFile == "" {
		return src, src.Handles(), nil
	}

	handles, err := source.LoadHandles(cfg.UsernamesFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load handles: %w", err)
	}
	return src, handles, nil
}

// newClassifier builds the domain classifier with the configured additions.
func newClassifier(cfg *config.Config) *domains.Classifier {
	return domains.NewClassifier(
		domains.WithAggregators(cfg.AggregatorDomains...),
		domains.WithSocial(cfg.SocialDomains...),
		domains.WithPlaceholders(cfg.PlaceholderDomains...),
	)
}

// newVerifier builds the MX resolver and, when enabled, the SMTP prober.
func newVerifier(cfg *config.Config, logger *slog.Logger) (*verify.Verifier, error) {
	resolver := verify.NewDNSResolver(
		verify.WithDNSServer(cfg.DNSServer),
		verify.WithDNSTimeout(cfg.DNSTimeout),
		verify.WithResolverLogger(logger),
	)

	opts := []verify.VerifierOption{verify.WithVerifierLogger(logger)}
	if cfg.SMTPVerify {
		dialer, err := verify.NewDialer(cfg.SMTPProxy)
		if err != nil {
			return nil, fmt.Errorf("failed to create SMTP dialer: %w", err)
		}
		prober := verify.NewSMTPProber(dialer,
			verify.WithSMTPTimeout(cfg.SMTPTimeout),
			verify.WithSMTPPort(cfg.SMTPPort),
			verify.WithHELOName(cfg.HELOName),
			verify.WithMailFrom(cfg.SMTPFrom),
			verify.WithProberLogger(logger),
		)
		opts = append(opts, verify.WithSMTPVerify(prober))
	}

	logger.Debug("verifier configured",
		"dns_server", resolver.Server(),
		"smtp_verify", cfg.SMTPVerify,
	)
	return verify.NewVerifier(resolver, opts...), nil
}

// newDeepCrawler builds the fetcher and the two-level crawler.
func newDeepCrawler(cfg *config.Config, classifier *domains.Classifier, logger *slog.Logger) *crawler.DeepCrawler {
	fetcher := crawler.NewFetcher(
		crawler.WithHeadTimeout(cfg.HeadTimeout),
		crawler.WithFetchTimeout(cfg.FetchTimeout),
		crawler.WithMaxBytes(cfg.MaxSiteBytes),
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithFetcherLogger(logger),
	)
	return crawler.NewDeepCrawler(fetcher, classifier,
		crawler.WithMaxDeepLinks(cfg.MaxDeepLinks),
		crawler.WithDeepConcurrency(cfg.DeepConcurrency),
		crawler.WithIgnorePatterns(cfg.IgnorePatterns),
		crawler.WithCrawlerLogger(logger),
	)
}

// runScan executes the scan. Every setup error is returned before the
// first identity is processed.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) error {
	startedAt := time.Now()

	src, handles, err := loadInputs(cfg)
	if err != nil {
		return err
	}

	classifier := newClassifier(cfg)
	verifier, err := newVerifier(cfg, logger)
	if err != nil {
		return err
	}
	sites := newDeepCrawler(cfg, classifier, logger)

	var db *database.RunDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
	}

	outputs, err := openOutputs(cfg)
	if err != nil {
		return err
	}
	defer outputs.Close()

	logger.Info("starting scan",
		"identities", len(handles),
		"concurrency", cfg.Concurrency,
		"smtp_verify", cfg.SMTPVerify,
		"save_to_db", cfg.SaveToDB,
	)

	bp := pipeline.NewBatchProcessor(src,
		func() *pipeline.Pipeline {
			p := pipeline.New(
				pipeline.WithLogger(logger),
				pipeline.WithContinueOnError(true),
			)
			p.AddSteps(pipeline.DefaultSteps(sites, verifier, logger)...)
			return p
		},
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithInterRequestDelay(cfg.InterRequestDelay),
		pipeline.WithBatchLogger(logger),
	)

	candidateLog := report.NewCSVWriter(outputs.out)
	results := make([]pipeline.Result, len(handles))
	var mu sync.Mutex
	var completed int

	batchErr := bp.ProcessBatchWithCallback(ctx, handles, func(result pipeline.Result, index int) {
		if err := candidateLog.Append(result.Records...); err != nil {
			logger.Error("failed to write candidate log", "handle", result.Handle, "error", err)
		}

		mu.Lock()
		defer mu.Unlock()
		results[index] = result
		completed++
		fmt.Fprintf(stdout, "[%d/%d] %s: %s\n", completed, len(handles), result.Handle, describeResult(result))
	})
	if batchErr != nil && !errors.Is(batchErr, context.Canceled) {
		return batchErr
	}
	if batchErr != nil {
		logger.Warn("scan interrupted, writing partial results", "completed", completed, "total", len(handles))
	}

	candidates := pipeline.Records(results)
	reduced := record.Reduce(candidates, classifier)

	scanReport := model.NewScanReport(completed, candidates, reduced)
	scanReport.Version = getVersion()
	scanReport.Summary.StartedAt = startedAt
	scanReport.Summary.FinishedAt = time.Now()

	if err := writeScanOutputs(outputs, scanReport); err != nil {
		return err
	}

	if db != nil {
		// The run is archived even when the scan was interrupted.
		runID, err := db.SaveRun(context.WithoutCancel(ctx), filepath.Base(cfg.ProfilesFile), scanReport)
		if err != nil {
			logger.Error("failed to save run", "error", err)
		} else {
			logger.Info("run saved to database", "run_id", runID)
		}
	}

	if _, err := report.NewSimpleWriter(stdout).Write(scanReport); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %d rows -> %s\n", len(candidates), joinPaths(cfg.OutFile, cfg.JSONFile))
	if cfg.CleanFile != "" {
		fmt.Fprintf(stdout, "Wrote %d contacts -> %s\n", len(reduced), cfg.CleanFile)
	}

	return batchErr
}

// writeScanOutputs writes the end-of-run files.
func writeScanOutputs(outputs *scanOutputs, scanReport *model.ScanReport) error {
	if outputs.json != nil {
		w := report.NewJSONWriter(outputs.json, report.WithPrettyPrint())
		if _, err := w.WriteRecords(scanReport.Candidates); err != nil {
			return fmt.Errorf("failed to write candidate JSON: %w", err)
		}
	}
	if outputs.clean != nil {
		if _, err := report.NewCSVWriter(outputs.clean).WriteRecords(scanReport.Reduced); err != nil {
			return fmt.Errorf("failed to write reduced log: %w", err)
		}
	}
	if outputs.markdown != nil {
		if _, err := report.NewMarkdownWriter(outputs.markdown).Write(scanReport); err != nil {
			return fmt.Errorf("failed to write markdown summary: %w", err)
		}
	}
	return nil
}

// describeResult summarizes one identity for the progress line.
func describeResult(result pipeline.Result) string {
	if result.Failed() {
		return "profile error (" + source.ErrorKind(result.Err) + ")"
	}
	switch n := len(result.Records); n {
	case 0:
		return "no candidates"
	case 1:
		return "1 candidate"
	default:
		return fmt.Sprintf("%d candidates", n)
	}
}

// joinPaths joins the non-empty paths with " and ".
func joinPaths(paths ...string) string {
	var s string
	for _, p := range paths {
		if p == "" {
			continue
		}
		if s != "" {
			s += " and "
		}
		s += p
	}
	return s
}

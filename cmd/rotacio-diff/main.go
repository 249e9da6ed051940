// Command rotacio-diff compares the rotacio attribute of a feature layer
// between the pre and dev ArcGIS environments.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	"github.com/sigab-tools/rotacio-diff/internal/config"
	"github.com/sigab-tools/rotacio-diff/pkg/arcgis"
	"github.com/sigab-tools/rotacio-diff/pkg/cache"
	"github.com/sigab-tools/rotacio-diff/pkg/compare"
	"github.com/sigab-tools/rotacio-diff/pkg/feature"
	"github.com/sigab-tools/rotacio-diff/pkg/logging"
	"github.com/sigab-tools/rotacio-diff/pkg/metrics"
	"github.com/sigab-tools/rotacio-diff/pkg/pagination"
)

// now is replaced in tests to get a stable export file name.
var now = time.Now

type options struct {
	configPath string
	configSet  bool

	export    *bool
	outputDir *string
	batchSize *int
	maxRows   *int
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the tool and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err == nil {
		err = execute(ctx, opts, stdout, stderr)
	}
	if err != nil {
		fmt.Fprintf(stdout, "An error occurred: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := pflag.NewFlagSet("rotacio-diff", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.StringP("config", "c", "config.yaml", "path to the YAML configuration file")
	export := fs.BoolP("export", "e", false, "write the differences to a spreadsheet instead of printing them")
	outputDir := fs.StringP("output-dir", "o", ".", "directory for the exported spreadsheet")
	batchSize := fs.IntP("batch-size", "b", pagination.DefaultBatchSize, "records requested per page")
	maxRows := fs.IntP("max-rows", "m", -1, "maximum records fetched per environment (negative: no limit)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts := &options{
		configPath: *configPath,
		configSet:  fs.Changed("config"),
	}
	if fs.Changed("export") {
		opts.export = export
	}
	if fs.Changed("output-dir") {
		opts.outputDir = outputDir
	}
	if fs.Changed("batch-size") {
		opts.batchSize = batchSize
	}
	if fs.Changed("max-rows") {
		opts.maxRows = maxRows
	}

	return opts, nil
}

// apply overrides configuration values with flags given on the command line.
func (o *options) apply(cfg *config.Config) error {
	if o.export != nil {
		cfg.Output.Export = *o.export
	}
	if o.outputDir != nil {
		cfg.Output.Dir = *o.outputDir
	}
	if o.batchSize != nil {
		cfg.Fetch.BatchSize = *o.batchSize
	}
	if o.maxRows != nil {
		cfg.Fetch.MaxRows = *o.maxRows
	}
	return config.Validate(cfg)
}

func execute(ctx context.Context, opts *options, stdout, stderr io.Writer) error {
	cfg, err := config.Load(opts.configPath, opts.configSet)
	if err != nil {
		return err
	}
	if err := opts.apply(cfg); err != nil {
		return err
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Logger.Level),
		Pretty: cfg.Logger.Pretty,
		Output: stderr,
		Fields: cfg.Logger.Fields,
	})
	logger := logging.NewLogger("rotacio-diff")

	arcCfg := arcgis.DefaultConfig(cfg.ArcGIS.UserAgent)
	arcCfg.Timeout = cfg.ArcGIS.Timeout
	arcCfg.TokenExpiration = cfg.ArcGIS.TokenExpiration
	arcCfg.Referer = cfg.ArcGIS.Referer

	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unavailable, token cache disabled")
		} else {
			arcCfg.TokenCache = cache.NewManager(redisClient)
			logger.Debug().Str("addr", cfg.Redis.Addr).Msg("Token cache enabled")
		}
	}

	client, err := arcgis.New(arcCfg)
	if err != nil {
		return fmt.Errorf("create arcgis client: %w", err)
	}

	fmt.Fprintln(stdout, "Connecting to GIS...")
	preSession, err := client.Login(ctx, cfg.Pre.PortalURL, cfg.Pre.Username, cfg.Pre.Password)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", cfg.Pre.Name, err)
	}
	fmt.Fprintf(stdout, "Connected to GIS %s\n", cfg.Pre.Name)

	devSession, err := client.Login(ctx, cfg.Dev.PortalURL, cfg.Dev.Username, cfg.Dev.Password)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", cfg.Dev.Name, err)
	}
	fmt.Fprintf(stdout, "Connected to GIS %s\n", cfg.Dev.Name)

	fetcher := pagination.NewFetcher(pagination.Config{
		BatchSize: cfg.Fetch.BatchSize,
		MaxRows:   cfg.Fetch.MaxRowsLimit(),
	})

	pre, err := fetchEnvironment(ctx, stdout, fetcher, client.Layer(cfg.Pre.ServiceURL, preSession).WithWhere(cfg.Fetch.Where), cfg.Pre.Name)
	if err != nil {
		return err
	}
	dev, err := fetchEnvironment(ctx, stdout, fetcher, client.Layer(cfg.Dev.ServiceURL, devSession).WithWhere(cfg.Fetch.Where), cfg.Dev.Name)
	if err != nil {
		return err
	}

	diffs := compare.Diff(pre, dev)
	metrics.Differences.Set(float64(len(diffs)))
	logger.Info().Int("differences", len(diffs)).Msg("Comparison complete")

	if cfg.Output.Export {
		path := filepath.Join(cfg.Output.Dir, compare.FileName(now()))
		if err := compare.Export(path, diffs); err != nil {
			return fmt.Errorf("export differences: %w", err)
		}
		fmt.Fprintf(stdout, "Exported %d differences to %s\n", len(diffs), path)
	} else if err := compare.Print(stdout, diffs); err != nil {
		return fmt.Errorf("print differences: %w", err)
	}

	if cfg.Metrics.PushgatewayURL != "" {
		if err := metrics.Push(cfg.Metrics.PushgatewayURL, cfg.Metrics.Instance); err != nil {
			logger.Warn().Err(err).Msg("Failed to push metrics")
		}
	}

	return nil
}

func fetchEnvironment(ctx context.Context, stdout io.Writer, fetcher *pagination.Fetcher, layer *arcgis.FeatureLayer, env string) (feature.ResultSet, error) {
	fmt.Fprintf(stdout, "Fetching features from %s environment...\n", env)

	logger := logging.ForEnvironment("pagination", env)
	logger.Debug().Str("layer", layer.URL()).Msg("Fetching layer")

	records, err := fetcher.WithLogger(logger).FetchAll(ctx, layer)
	if err != nil {
		return nil, fmt.Errorf("fetch %s features: %w", env, err)
	}

	fmt.Fprintf(stdout, "Found %d features in %s environment\n", len(records), env)
	return records, nil
}

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Sammers21/owl-esports/internal/config"
	"github.com/Sammers21/owl-esports/internal/dom"
	"github.com/Sammers21/owl-esports/internal/draft"
	"github.com/Sammers21/owl-esports/internal/logging"
	"github.com/Sammers21/owl-esports/internal/metrics"
	"github.com/Sammers21/owl-esports/internal/sink"
)

const fetchTimeout = 15 * time.Second

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract the draft from a scoreboard page and deliver the pick line",
	Long: `Loads one snapshot of the scoreboard page (--file, "-" for stdin, or --url),
prints the pick line and the match label, and delivers the pick line through
the configured sink. A page that is not the scoreboard is skipped without error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		pageURL, _ := cmd.Flags().GetString("url")
		if (file == "") == (pageURL == "") {
			return errors.New("exactly one of --file or --url is required")
		}

		cfg, err := config.ReadExtractor(envFiles(cmd)...)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("sink") {
			s, _ := cmd.Flags().GetString("sink")
			cfg.Sink = config.SinkKind(s)
		}
		if cmd.Flags().Changed("tg") {
			cfg.TrackerID, _ = cmd.Flags().GetString("tg")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err := logging.New(cfg.Log.Logging())
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		defer logger.Sync()

		src, err := openPage(cmd.Context(), cmd.InOrStdin(), file, pageURL)
		if err != nil {
			return err
		}
		defer src.Close()

		metricsFile, _ := cmd.Flags().GetString("metrics-file")
		x := extraction{
			cfg:     cfg,
			logger:  logger,
			metrics: metrics.New(),
			sink:    newSink(cfg),
		}
		runErr := x.run(cmd.Context(), src, cmd.OutOrStdout())
		if metricsFile != "" {
			if err := x.metrics.WriteTextfile(metricsFile); err != nil {
				logger.Warn("failed to write metrics", zap.String("path", metricsFile), zap.Error(err))
			}
		}
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringP("file", "f", "", "Saved scoreboard page, or - for stdin")
	extractCmd.Flags().StringP("url", "u", "", "Fetch the scoreboard page from this URL")
	extractCmd.Flags().String("sink", "", "Override OWL_SINK (http, clipboard, none)")
	extractCmd.Flags().String("tg", "", "Override OWL_TRACKER_ID")
	extractCmd.Flags().String("metrics-file", "", "Write extraction and delivery counters to this file")
}

// extraction is one invocation of the extractor over a single page.
type extraction struct {
	cfg     *config.Extractor
	logger  *zap.Logger
	metrics *metrics.Metrics
	sink    sink.Sink
}

func (x extraction) run(ctx context.Context, src io.Reader, out io.Writer) error {
	doc, err := dom.Parse(src)
	if err != nil {
		return err
	}
	locator, err := dom.NewLocator(x.cfg.Paths())
	if err != nil {
		return err
	}

	dispatcher := sink.NewDispatcher(ctx, x.sink,
		sink.WithTimeout(x.cfg.DeliveryTimeout),
		sink.WithLogger(x.logger.Named("sink")),
		sink.WithObserver(x.metrics.ObserveDelivery))

	extractor := draft.NewExtractor(x.cfg.PageTitle, locator,
		draft.WithLogger(x.logger.Named("draft")),
		draft.WithSender(dispatcher, x.cfg.TrackerID),
		draft.WithObserver(x.metrics.ObserveExtraction))

	res, err := extractor.Process(doc)
	// Wait for the queued delivery before the process exits.
	dispatcher.Close()
	if err != nil {
		return err
	}
	if res == nil {
		x.logger.Info("not a scoreboard page, nothing to do", zap.String("title", doc.Title()))
		return nil
	}

	fmt.Fprintln(out, res.Command)
	fmt.Fprintln(out, res.Match)
	return nil
}

func newSink(cfg *config.Extractor) sink.Sink {
	switch cfg.Sink {
	case config.SinkHTTP:
		return sink.NewHTTP(cfg.TrackerURL, sink.HTTPOptions{Timeout: cfg.DeliveryTimeout, RPS: cfg.DeliveryRPS})
	case config.SinkClipboard:
		return sink.NewClipboard()
	default:
		return sink.Nop{}
	}
}

func openPage(ctx context.Context, stdin io.Reader, file, pageURL string) (io.ReadCloser, error) {
	switch {
	case file == "-":
		return io.NopCloser(stdin), nil
	case file != "":
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open page: %w", err)
		}
		return f, nil
	default:
		return fetchPage(ctx, pageURL)
	}
}

func fetchPage(ctx context.Context, pageURL string) (io.ReadCloser, error) {
	resp, err := resty.New().
		SetTimeout(fetchTimeout).
		SetHeader("Accept", "text/html").
		R().
		SetContext(ctx).
		Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to fetch page: %s", resp.Status())
	}
	return io.NopCloser(bytes.NewReader(resp.Body())), nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/flavorsearch/internal/bootstrap"
	"github.com/kailas-cloud/flavorsearch/internal/config"
	"github.com/kailas-cloud/flavorsearch/internal/corpus"
	"github.com/kailas-cloud/flavorsearch/internal/domain/search/request"
	"github.com/kailas-cloud/flavorsearch/internal/embedding"
	logpkg "github.com/kailas-cloud/flavorsearch/internal/logger"
	"github.com/kailas-cloud/flavorsearch/internal/version"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// cliState carries values shared by every command.
type cliState struct {
	out    io.Writer
	logger *zap.Logger
}

func newApp(out io.Writer) *cli.App {
	st := &cliState{out: out, logger: zap.NewNop()}

	modelFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "model",
			Aliases: []string{"m"},
			Usage:   "Path to the embedding artifact (word2vec text/binary or msgpack snapshot)",
		},
		&cli.StringFlag{
			Name:  "model-format",
			Usage: "Embedding format: auto, text, binary, msgpack",
			Value: "auto",
		},
	}
	datasetFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "dataset",
			Aliases: []string{"d"},
			Usage:   "Path to the recipe dataset (CSV or Parquet)",
		},
		&cli.StringFlag{
			Name:  "dataset-format",
			Usage: "Dataset format: auto, csv, parquet",
			Value: "auto",
		},
	}

	return &cli.App{
		Name:    "flavorctl",
		Usage:   "Offline tooling for the flavorsearch recipe search engine",
		Version: version.String(),
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Before: func(c *cli.Context) error {
			l, err := logpkg.New("local", c.String("log-level"))
			if err != nil {
				return err
			}
			st.logger = l
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "query",
				Usage:     "Run a search query against a model and dataset",
				ArgsUsage: "<query text>",
				Action:    st.queryCommand,
				Flags: concat(modelFlags, datasetFlags, []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Service config file; --model and --dataset override its paths",
					},
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of ranked recipes to print",
						Value:   request.DefaultTopK,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print results as JSON",
					},
				}),
			},
			{
				Name:   "convert",
				Usage:  "Convert an embedding artifact into a msgpack snapshot for fast startup",
				Action: st.convertCommand,
				Flags: concat(modelFlags, []cli.Flag{
					&cli.StringFlag{
						Name:     "out",
						Aliases:  []string{"o"},
						Usage:    "Output snapshot path",
						Required: true,
					},
				}),
			},
			{
				Name:   "inspect",
				Usage:  "Print embedding and dataset statistics",
				Action: st.inspectCommand,
				Flags: concat(modelFlags, datasetFlags, []cli.Flag{
					&cli.StringFlag{
						Name:  "similar",
						Usage: "Print the nearest vocabulary neighbours of this token",
					},
					&cli.IntFlag{
						Name:  "n",
						Usage: "Number of neighbours or sample tokens to print",
						Value: 10,
					},
				}),
			},
		},
	}
}

func concat(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// engineConfig builds a config from --config plus path overrides. HTTP and
// cache settings are irrelevant offline, so the result is not validated.
func engineConfig(c *cli.Context) (config.Config, error) {
	var cfg config.Config
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if v := c.String("model"); v != "" {
		cfg.Model.Path = v
		cfg.Model.Format = c.String("model-format")
	}
	if v := c.String("dataset"); v != "" {
		cfg.Dataset.Path = v
		cfg.Dataset.Format = c.String("dataset-format")
	}
	cfg.ApplyDefaults()
	if cfg.Model.Path == "" || cfg.Dataset.Path == "" {
		return cfg, fmt.Errorf("--model and --dataset (or --config) are required")
	}
	return cfg, nil
}

type queryHit struct {
	Rank  int     `json:"rank"`
	ID    int     `json:"id"`
	Title string  `json:"title"`
	Score float64 `json:"relevance_score"`
}

type queryOutput struct {
	Query          string     `json:"query"`
	CorrectedQuery string     `json:"corrected_query"`
	Results        []queryHit `json:"results"`
}

func (st *cliState) queryCommand(c *cli.Context) error {
	cfg, err := engineConfig(c)
	if err != nil {
		return err
	}
	eng, err := bootstrap.Load(cfg, st.logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	query := strings.Join(c.Args().Slice(), " ")
	req, err := request.New(query, c.Int("top-k"), 0, 0, eng.Limits)
	if err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}
	page, err := eng.Service(nil).Search(context.Background(), req)
	if err != nil {
		return err
	}

	out := queryOutput{Query: query, CorrectedQuery: page.CorrectedQuery(), Results: make([]queryHit, len(page.Hits))}
	for i, h := range page.Hits {
		out.Results[i] = queryHit{Rank: i + 1, ID: h.Document.ID(), Title: h.Document.Title(), Score: h.Score}
	}

	if c.Bool("json") {
		enc := json.NewEncoder(st.out)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if out.CorrectedQuery != strings.Join(strings.Fields(query), " ") {
		fmt.Fprintf(st.out, "showing results for %q\n", out.CorrectedQuery)
	}
	tw := tabwriter.NewWriter(st.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tID\tSCORE\tTITLE")
	for _, h := range out.Results {
		fmt.Fprintf(tw, "%d\t%d\t%.4f\t%s\n", h.Rank, h.ID, h.Score, h.Title)
	}
	return tw.Flush()
}

func loadTable(c *cli.Context) (*embedding.Table, error) {
	path := c.String("model")
	if path == "" {
		return nil, fmt.Errorf("--model is required")
	}
	format, err := embedding.ParseFormat(c.String("model-format"))
	if err != nil {
		return nil, err
	}
	return embedding.Load(path, format)
}

func (st *cliState) convertCommand(c *cli.Context) error {
	table, err := loadTable(c)
	if err != nil {
		return err
	}

	outPath := c.String("out")
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	if err := embedding.WriteSnapshot(f, table); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", outPath, err)
	}

	st.logger.Info("Snapshot written", zap.String("path", outPath))
	fmt.Fprintf(st.out, "wrote %s: %d tokens, %d dimensions\n", outPath, table.Len(), table.Dim())
	return nil
}

func (st *cliState) inspectCommand(c *cli.Context) error {
	n := c.Int("n")
	if c.String("model") != "" {
		table, err := loadTable(c)
		if err != nil {
			return err
		}
		fmt.Fprintf(st.out, "vocabulary: %d\ndimensions: %d\n", table.Len(), table.Dim())

		if tok := c.String("similar"); tok != "" {
			if !table.Contains(tok) {
				return fmt.Errorf("token %q is not in the vocabulary", tok)
			}
			for _, nb := range neighbours(table, tok, n) {
				fmt.Fprintf(st.out, "  %-24s %.4f\n", nb.token, nb.sim)
			}
		} else {
			sample := table.Tokens()[:min(n, table.Len())]
			fmt.Fprintf(st.out, "sample: %s\n", strings.Join(sample, " "))
		}
	}

	if c.String("dataset") != "" {
		format, err := corpus.ParseFormat(c.String("dataset-format"))
		if err != nil {
			return err
		}
		store, err := corpus.Load(c.String("dataset"), format)
		if err != nil {
			return err
		}
		fmt.Fprintf(st.out, "documents: %d\n", store.Len())
	}

	if c.String("model") == "" && c.String("dataset") == "" {
		return fmt.Errorf("--model or --dataset is required")
	}
	return nil
}

type neighbour struct {
	token string
	sim   float64
}

// neighbours returns the n tokens most similar to tok, excluding tok itself.
func neighbours(table *embedding.Table, tok string, n int) []neighbour {
	all := make([]neighbour, 0, table.Len())
	for _, other := range table.Tokens() {
		if other == tok {
			continue
		}
		all = append(all, neighbour{token: other, sim: table.Similarity(tok, other)})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].sim > all[j].sim })
	return all[:min(n, len(all))]
}

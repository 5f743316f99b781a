package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/MSM2025CL/stproject/internal/app"
	"github.com/MSM2025CL/stproject/internal/config"
	"github.com/MSM2025CL/stproject/internal/domain/search/keyword"
	"github.com/MSM2025CL/stproject/internal/domain/search/ordering"
	"github.com/MSM2025CL/stproject/internal/domain/search/request"
	logpkg "github.com/MSM2025CL/stproject/internal/logger"
)

// loadApp reads the config selected by the global flags and wires the services.
func loadApp(ctx context.Context, cmd *cli.Command) (*app.App, config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if path := cmd.String("config"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(cmd.String("env"))
	}
	if err != nil {
		return nil, cfg, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger("cli", cfg.Logging.Level)
	if err != nil {
		return nil, cfg, fmt.Errorf("create logger: %w", err)
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, cfg, err
	}
	return a, cfg, nil
}

func output(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func searchAction(ctx context.Context, cmd *cli.Command) error {
	query := strings.Join(cmd.Args().Slice(), " ")

	o, ok := ordering.Parse(cmd.String("ordering"))
	if !ok {
		return fmt.Errorf("--ordering must be %q or %q", ordering.Price, ordering.Relevance)
	}

	a, cfg, err := loadApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	topN := cmd.Int("top-n")
	if topN <= 0 {
		topN = cfg.Search.DefaultTopN
	}
	show := cmd.Int("show")
	if show <= 0 {
		show = cfg.Search.DefaultShow
	}

	req, err := request.New(query, o, cmd.Bool("offers"), topN, show)
	if err != nil {
		return err
	}
	resp, err := a.Search.Search(ctx, req)
	if err != nil {
		return err
	}

	w := output(cmd)
	if resp.NoQuery {
		_, _ = fmt.Fprintln(w, "no query")
		return nil
	}
	if resp.ProviderOnly {
		_, _ = fmt.Fprintln(w, "provider match: listing provider products")
	}
	renderResults(w, resp.Results, cmd.Bool("scores"))
	return nil
}

func keywordAction(ctx context.Context, cmd *cli.Command) error {
	clauses, err := parseClauses(cmd.Args().Slice())
	if err != nil {
		return err
	}

	providers, mode, err := providerFilter(cmd.StringSlice("provider"), cmd.StringSlice("exclude-provider"))
	if err != nil {
		return err
	}
	q, err := keyword.New(clauses, providers, mode)
	if err != nil {
		return err
	}

	a, cfg, err := loadApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	show := cmd.Int("show")
	if show <= 0 {
		show = cfg.Search.DefaultShow
	}

	resp, err := a.Search.Keyword(ctx, q, cmd.Bool("offers"), show)
	if err != nil {
		return err
	}
	if resp.NoQuery {
		_, _ = fmt.Fprintln(output(cmd), "no query")
		return nil
	}
	renderResults(output(cmd), resp.Results, false)
	return nil
}

func skuAction(ctx context.Context, cmd *cli.Command) error {
	sku := cmd.Args().First()
	if sku == "" {
		return fmt.Errorf("sku is required")
	}

	a, _, err := loadApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	rows, err := a.Search.BySKU(ctx, sku)
	if err != nil {
		return fmt.Errorf("sku %q: %w", sku, err)
	}
	renderResults(output(cmd), rows, false)
	return nil
}

func inspectAction(ctx context.Context, cmd *cli.Command) error {
	a, cfg, err := loadApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	renderInspect(output(cmd), cfg, a.Catalog.Len(), len(a.Catalog.Providers()), a.Index.Stats())
	renderHealth(output(cmd), a.Health.Check(ctx))
	return nil
}

// parseClauses turns CLI terms into keyword clauses. A bare or "+" term is an
// AND clause, "|" makes it OR, and a following "!" negates it.
func parseClauses(args []string) ([]keyword.Clause, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("at least one term is required")
	}
	clauses := make([]keyword.Clause, 0, len(args))
	for i, arg := range args {
		c := keyword.Clause{Op: keyword.And}
		switch {
		case strings.HasPrefix(arg, "|"):
			c.Op = keyword.Or
			arg = arg[1:]
		case strings.HasPrefix(arg, "+"):
			arg = arg[1:]
		}
		if strings.HasPrefix(arg, "!") {
			c.Exclude = true
			arg = arg[1:]
		}
		if arg == "" {
			return nil, fmt.Errorf("term %d is empty", i+1)
		}
		if i == 0 {
			c.Op = ""
		}
		c.Term = arg
		clauses = append(clauses, c)
	}
	return clauses, nil
}

func providerFilter(include, exclude []string) ([]string, keyword.ProviderMode, error) {
	switch {
	case len(include) > 0 && len(exclude) > 0:
		return nil, keyword.ProvidersAll, fmt.Errorf("--provider and --exclude-provider are mutually exclusive")
	case len(include) > 0:
		return include, keyword.ProvidersInclude, nil
	case len(exclude) > 0:
		return exclude, keyword.ProvidersExclude, nil
	default:
		return nil, keyword.ProvidersAll, nil
	}
}

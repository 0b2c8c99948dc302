package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"mealprep/internal/app"
	"mealprep/internal/config"
	"mealprep/internal/logger"
)

// stringList collects a flag that may be repeated.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ", ")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file (default ./mealprep.yaml)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Development: cfg.Log.Development,
	})
	defer func() { _ = log.Sync() }()

	application, err := app.NewApp(cfg, log, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, application, args[0], args[1:])
	stop()

	if cerr := application.Close(); cerr != nil {
		log.Warn("failed to write metrics", zap.Error(cerr))
	}
	if err != nil {
		log.Debug("command failed", zap.String("command", args[0]), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, application *app.App, cmd string, args []string) error {
	switch cmd {
	case "list":
		listCmd := flag.NewFlagSet("list", flag.ExitOnError)
		category := listCmd.String("category", "", "Only list recipes in this category")
		listCmd.Parse(args)
		return application.List(ctx, *category)

	case "show":
		if len(args) != 1 {
			return fmt.Errorf("usage: mealprep show <recipe>")
		}
		return application.Show(ctx, args[0])

	case "peek":
		if len(args) < 1 {
			return fmt.Errorf("usage: mealprep peek <ingredient>")
		}
		return application.Peek(strings.Join(args, " "))

	case "create":
		createCmd := flag.NewFlagSet("create", flag.ExitOnError)
		name := createCmd.String("name", "", "Recipe name")
		servings := createCmd.Int("servings", 0, "Number of servings")
		var categories, ingredients, steps stringList
		createCmd.Var(&categories, "category", "Category (repeatable)")
		createCmd.Var(&ingredients, "ingredient", `Ingredient as "quantity<TAB>unit<TAB>name" (repeatable)`)
		createCmd.Var(&steps, "step", "Instruction step (repeatable)")
		createCmd.Parse(args)

		_, err := application.CreateRecipe(ctx, app.CreateRequest{
			Name:        *name,
			Servings:    *servings,
			Categories:  categories,
			Ingredients: ingredients,
			Steps:       steps,
		})
		return err

	case "import":
		importCmd := flag.NewFlagSet("import", flag.ExitOnError)
		servings := importCmd.Int("servings", 0, "Number of servings (default: read from the page)")
		var categories stringList
		importCmd.Var(&categories, "category", "Category (repeatable)")
		importCmd.Parse(args)
		if importCmd.NArg() != 1 {
			return fmt.Errorf("usage: mealprep import [-servings N] [-category C]... <url|file>")
		}

		_, err := application.ImportRecipe(ctx, app.ImportRequest{
			Target:     importCmd.Arg(0),
			Servings:   *servings,
			Categories: categories,
		})
		return err

	case "check":
		return application.Check(ctx)

	case "verify":
		return application.Verify(ctx)

	case "targets":
		targetsCmd := flag.NewFlagSet("targets", flag.ExitOnError)
		calories := targetsCmd.Int("calories", 0, "Daily calories (default from config)")
		targetsCmd.Parse(args)
		return application.Targets(*calories)

	case "average":
		if len(args) != 1 {
			return fmt.Errorf("usage: mealprep average <category>")
		}
		return application.Average(ctx, args[0])

	case "day":
		return application.Day(ctx, args...)

	case "shop":
		shopCmd := flag.NewFlagSet("shop", flag.ExitOnError)
		scale := shopCmd.Float64("scale", 1, "Multiply every quantity by this factor")
		shopCmd.Parse(args)
		return application.Shop(ctx, *scale, shopCmd.Args()...)

	case "stats":
		return application.Stats(ctx)

	case "watch":
		return application.Watch(ctx)

	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func printUsage() {
	fmt.Println("Usage: mealprep [-config file] <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  list [-category C]     List recipe names")
	fmt.Println("  show <recipe>          Print a recipe")
	fmt.Println("  peek <ingredient>      Print an ingredient bank record")
	fmt.Println("  create                 Author a recipe from -name, -servings, -category, -ingredient and -step flags")
	fmt.Println("  import <url|file>      Import a recipe from an HTML page")
	fmt.Println("  check                  Load everything and report incomplete recipes")
	fmt.Println("  verify                 Recompute nutrition and report stale summaries")
	fmt.Println("  targets [-calories N]  Print daily nutrition targets")
	fmt.Println("  average <category>     Print the average nutrition of a category")
	fmt.Println("  day <recipe>...        Compare a day's meals with the daily targets")
	fmt.Println("  shop [-scale N] <recipe>...")
	fmt.Println("                         Print a shopping list")
	fmt.Println("  stats                  Print cookbook and process statistics")
	fmt.Println("  watch                  Reload the cookbook whenever files change")
}

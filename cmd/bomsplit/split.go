package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"bomsplit/logger"
	"bomsplit/pipeline"
	"bomsplit/rules"
)

func (a *application) splitCommand() *cli.Command {
	return &cli.Command{
		Name:      "split",
		Usage:     "Разобрать входные файлы и записать отчет по категориям",
		ArgsUsage: "[файл[:N] ...]",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "inputs",
				Aliases: []string{"i"},
				Usage:   "Входные файлы .xlsx/.docx/.txt, \"файл:N\" умножает количество на N",
			},
			&cli.StringFlag{
				Name:  "sheets",
				Usage: "Листы Excel через запятую (имена или номера с 1)",
			},
			&cli.StringFlag{
				Name:  "sheet",
				Usage: "Один лист Excel",
			},
			&cli.StringFlag{
				Name:    "xlsx",
				Aliases: []string{"o"},
				Usage:   "Книга отчета",
			},
			&cli.StringFlag{
				Name:    "txt-dir",
				Value:   a.cfg.Split.TxtDir,
				Usage:   "Каталог текстовых отчетов",
				EnvVars: []string{"BOMSPLIT_TXT_DIR"},
			},
			&cli.BoolFlag{
				Name:    "combine",
				Value:   a.cfg.Split.Combine,
				Usage:   "Объединять одинаковые позиции из разных файлов и добавить лист SUMMARY",
				EnvVars: []string{"BOMSPLIT_COMBINE"},
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Не применять общие списки ключевых слов",
			},
			&cli.BoolFlag{
				Name:  "loose",
				Usage: "Применять все правила классификации (по умолчанию)",
			},
			&cli.BoolFlag{
				Name:  "interactive",
				Usage: "Спрашивать категорию нераспределенных позиций",
			},
			&cli.BoolFlag{
				Name:  "no-interactive",
				Usage: "Никогда не задавать вопросов",
			},
			&cli.StringFlag{
				Name:    "assign-json",
				Value:   a.cfg.Split.RulesPath,
				Usage:   "Файл правил классификации (.json или .yaml)",
				EnvVars: []string{"BOMSPLIT_RULES_PATH"},
			},
			&cli.StringFlag{
				Name:  "exclude-items",
				Usage: "Файл исключений \"наименование, количество\"",
			},
			&cli.BoolFlag{
				Name:  "exclude-podbor",
				Usage: "Не включать подборы и замены",
			},
			&cli.BoolFlag{
				Name:  "no-db",
				Usage: "Не использовать базу известных компонентов",
			},
		},
		Action: a.runSplit,
	}
}

func (a *application) runSplit(c *cli.Context) error {
	inputs := append(c.StringSlice("inputs"), c.Args().Slice()...)
	if len(inputs) == 0 {
		return fmt.Errorf("no input files: use --inputs or pass files as arguments")
	}
	if c.String("xlsx") == "" && c.String("txt-dir") == "" {
		return fmt.Errorf("nothing to write: set --xlsx and/or --txt-dir")
	}

	opts := pipeline.Options{
		Inputs:         inputs,
		Sheets:         sheetList(c.String("sheets"), c.String("sheet")),
		Output:         c.String("xlsx"),
		TxtDir:         c.String("txt-dir"),
		Combine:        c.Bool("combine"),
		Strict:         a.cfg.Split.Strict,
		RulesPath:      c.String("assign-json"),
		ExclusionsPath: c.String("exclude-items"),
		ExcludePodbor:  c.Bool("exclude-podbor"),
	}
	if c.IsSet("strict") {
		opts.Strict = c.Bool("strict")
	}
	if c.Bool("loose") {
		opts.Strict = false
	}

	if a.cfg.Database.Enabled && !c.Bool("no-db") {
		db, err := a.openDB(c)
		if err != nil {
			a.log.Warn("⚠ База компонентов недоступна, работаем без нее", logger.ErrorF(err))
		} else {
			defer db.Close()
			opts.DB = db
		}
	}

	if interactive(c) {
		opts.Resolver = rules.NewTUIResolver()
	}

	res, err := pipeline.Run(c.Context, opts, a.log)
	if err != nil {
		return err
	}

	a.log.Info("✓ Готово",
		logger.Int("loaded", res.Loaded),
		logger.Int("records", len(res.Records)),
		logger.Int("unclassified", res.Unclassified),
		logger.Int("decided", res.Decided))
	return nil
}

// sheetList разбирает --sheets "1,2" и --sheet NAME в один список
func sheetList(sheets, sheet string) []string {
	out := lo.Compact(lo.Map(strings.Split(sheets, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
	if s := strings.TrimSpace(sheet); s != "" {
		out = append(out, s)
	}
	return out
}

// interactive разметка включается флагом или, без флагов, когда stdin это терминал
func interactive(c *cli.Context) bool {
	switch {
	case c.Bool("no-interactive"):
		return false
	case c.Bool("interactive"):
		return true
	}
	info, err := os.Stdin.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

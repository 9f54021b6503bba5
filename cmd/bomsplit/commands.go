package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"bomsplit/model"
	"bomsplit/report"
)

func (a *application) compareCommand() *cli.Command {
	return &cli.Command{
		Name:      "compare",
		Usage:     "Сравнить две обработанные книги",
		ArgsUsage: "FILE1 FILE2",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "comparison.xlsx",
				Usage:   "Книга с результатом сравнения",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("compare needs exactly two files, got %d", c.NArg())
			}
			diffs, err := report.CompareProcessed(c.Args().Get(0), c.Args().Get(1), c.String("output"), a.log)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Различий: %d, результат: %s\n", len(diffs), c.String("output"))
			return nil
		},
	}
}

func (a *application) dbCommand() *cli.Command {
	return &cli.Command{
		Name:  "db",
		Usage: "База известных компонентов",
		Subcommands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Версия и количество компонентов по категориям",
				Action: a.dbStats,
			},
			{
				Name:      "import",
				Usage:     "Загрузить компоненты из книги Excel",
				ArgsUsage: "FILE.xlsx",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "replace", Usage: "Заменить базу целиком"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("import needs one file")
					}
					db, err := a.openDB(c)
					if err != nil {
						return err
					}
					defer db.Close()
					n, err := db.ImportExcel(c.Context, c.Args().First(), c.Bool("replace"))
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "Импортировано компонентов: %d\n", n)
					return nil
				},
			},
			{
				Name:      "export",
				Usage:     "Выгрузить базу в книгу Excel",
				ArgsUsage: "FILE.xlsx",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("export needs one file")
					}
					db, err := a.openDB(c)
					if err != nil {
						return err
					}
					defer db.Close()
					return db.ExportExcel(c.Context, c.Args().First())
				},
			},
			{
				Name:      "add",
				Usage:     "Добавить компонент вручную",
				ArgsUsage: "NAME CATEGORY",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return fmt.Errorf("add needs a name and a category")
					}
					db, err := a.openDB(c)
					if err != nil {
						return err
					}
					defer db.Close()
					changed, err := db.Add(c.Context, c.Args().Get(0), model.Category(c.Args().Get(1)), "")
					if err != nil {
						return err
					}
					if !changed {
						fmt.Fprintln(c.App.Writer, "Компонент уже есть в базе с этой категорией")
					}
					return nil
				},
			},
			{
				Name:   "history",
				Usage:  "История изменений базы",
				Action: a.dbHistory,
			},
		},
	}
}

func (a *application) dbStats(c *cli.Context) error {
	db, err := a.openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	st, err := db.Stats(c.Context)
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Версия: %s\n", st.Version)
	fmt.Fprintf(w, "Создана: %s\n", st.Created)
	fmt.Fprintf(w, "Обновлена: %s\n", st.LastUpdated)
	fmt.Fprintf(w, "Хэш: %s\n", st.CurrentHash)
	fmt.Fprintf(w, "Всего компонентов: %d\n", st.Total)
	for _, cat := range model.OutputOrder {
		if n := st.ByCategory[cat]; n > 0 {
			fmt.Fprintf(w, "  %-24s %d\n", cat.SheetName(), n)
		}
	}
	return nil
}

func (a *application) dbHistory(c *cli.Context) error {
	db, err := a.openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := db.History(c.Context)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(c.App.Writer, "%s  v%s  %-18s +%d  %s\n",
			e.CreatedAt.Format("2006-01-02 15:04"), e.Version, e.Action, e.ComponentsAdded, strings.Join(e.ComponentNames, ", "))
	}
	return nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lepinkainen/flicklog/internal/dataset"
	flerrors "github.com/lepinkainen/flicklog/internal/errors"
	"github.com/lepinkainen/flicklog/internal/importer"
)

var menuOptions = []string{
	"Search for a movie",
	"Show dataset info",
	"Show statistics",
	"Save dataset",
	"Import CSV/XLSX watch list",
	"Update missing IMDb/RT ratings",
	"Exit",
}

// RunMenu shows the numbered menu until the user exits or input ends.
// Failures of a single action are printed and the menu continues.
func (a *App) RunMenu(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		a.printf("\n%s\n", strings.Repeat("*", 20))
		for i, opt := range menuOptions {
			a.printf("%d. %s\n", i+1, opt)
		}
		choice, ok := a.prompt(fmt.Sprintf("Select option (1-%d): ", len(menuOptions)))
		if !ok {
			return nil
		}

		var err error
		switch choice {
		case "1":
			err = a.menuSearch(ctx)
		case "2":
			a.menuInfo()
		case "3":
			err = a.writeStats("text", 10)
		case "4":
			err = a.menuSave()
		case "5":
			err = a.menuImport(ctx)
		case "6":
			err = a.menuUpdateRatings(ctx)
		case "7":
			return a.menuExit()
		default:
			a.printf("Invalid option.\n")
			continue
		}
		if err != nil {
			a.printf("Error: %v\n", err)
		}
	}
}

func (a *App) menuSearch(ctx context.Context) error {
	title, ok := a.prompt("Enter movie title: ")
	if !ok || title == "" {
		a.printf("No title given.\n")
		return nil
	}
	yearText, _ := a.prompt("Release year (optional): ")
	year, _ := strconv.Atoi(yearText)

	results, err := a.collector.Search(ctx, title, year, searchLimit)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		a.printf("No results for '%s'\n", title)
		return nil
	}
	a.printResults(results)

	selection, _ := a.prompt("Choose number (Enter=first): ")
	idx := 0
	if selection != "" {
		n, err := strconv.Atoi(selection)
		if err == nil && n >= 1 && n <= len(results) {
			idx = n - 1
		} else {
			a.printf("Invalid choice, using the first result.\n")
		}
	}

	rec, added, err := a.collector.Collect(ctx, results[idx].ID)
	if err != nil {
		return err
	}
	a.printRecord(rec, added)
	return nil
}

func (a *App) menuInfo() {
	a.printf("Dataset: %s\n", a.cfg.DatasetPath)
	a.printf("   Movies: %d\n", a.store.Len())
	a.printf("   Columns: %s\n", strings.Join(a.store.Columns(), ", "))
	a.printf("   Missing ratings: %d\n", len(a.store.MissingRatings()))
	if last, ok := a.store.Last(); ok {
		a.printf("   Last added: %s\n", last.Label())
	}
}

func (a *App) menuSave() error {
	err := a.save()
	if errors.Is(err, dataset.ErrEmpty) {
		a.printf("No data to save\n")
		return nil
	}
	return err
}

func (a *App) menuImport(ctx context.Context) error {
	path, ok := a.prompt("Enter path to CSV/XLSX file: ")
	if !ok || path == "" {
		a.printf("No file given.\n")
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		a.printf("File not found.\n")
		return nil
	}

	res, err := a.importFile(ctx, path, false)
	var missing *importer.MissingColumnsError
	switch {
	case errors.As(err, &missing):
		a.printf("File must contain 'Name' and 'Year' columns.\n")
		return nil
	case err != nil && !flerrors.IsStopProcessingError(err):
		return err
	}
	if res.Added == 0 {
		return nil
	}
	return a.save()
}

func (a *App) menuUpdateRatings(ctx context.Context) error {
	res, err := a.updateRatings(ctx)
	if err != nil {
		return err
	}
	if res.Updated+res.Cleared == 0 {
		return nil
	}
	if a.confirm("Save changes to CSV? (y/n): ") {
		return a.menuSave()
	}
	return nil
}

func (a *App) menuExit() error {
	if a.store.Len() > 0 && a.confirm("Save before exit? (y/n): ") {
		if err := a.menuSave(); err != nil {
			a.printf("Error: %v\n", err)
		}
	}
	a.printf("Goodbye!\n")
	return nil
}

func (a *App) confirm(label string) bool {
	answer, ok := a.prompt(label)
	if !ok {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

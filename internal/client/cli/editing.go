package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/eutype/internal/client/editor"
	"github.com/dmitrijs2005/eutype/internal/client/models"
	"github.com/dmitrijs2005/eutype/internal/filex"
)

func (a *App) editorCommands() map[string]command {
	return map[string]command{
		"show":    a.show,
		"text":    a.text,
		"set":     a.set,
		"append":  a.appendText,
		"replace": a.replace,
		"find":    a.find,
		"stats":   a.stats,
		"outline": a.outline,
		"save":    a.save,
		"name":    a.name,
		"export":  a.export,
		"back":    a.back,
		"close":   a.back,
	}
}

func (a *App) show(_ context.Context, _ []string) error {
	st := a.editor.Status()
	state := "saved"
	if st.Dirty {
		state = "unsaved changes"
	}
	last := "-"
	if !st.LastSaved.IsZero() {
		last = st.LastSaved.Local().Format(timeLayout)
	}
	fmt.Fprintf(a.out, "%s (id %s), %s, last saved %s\n", st.Name, st.FileID, state, last)
	fmt.Fprintln(a.out, a.buffer.GetHTML())
	return nil
}

func (a *App) text(_ context.Context, _ []string) error {
	fmt.Fprintln(a.out, a.buffer.GetText())
	return nil
}

// set replaces the whole body with HTML typed by the user.
func (a *App) set(_ context.Context, _ []string) error {
	body, err := GetMultiline(a.reader, "Enter the document HTML", a.out)
	if err != nil {
		return err
	}
	a.buffer.Apply(body)
	return nil
}

func (a *App) appendText(_ context.Context, args []string) error {
	text := strings.Join(args, " ")
	if text == "" {
		var err error
		if text, err = GetMultiline(a.reader, "Enter text to append", a.out); err != nil {
			return err
		}
	}
	if text == "" {
		return nil
	}
	a.buffer.AppendParagraph(text)
	return nil
}

// searchArgs splits --case and --word from the search terms.
func searchArgs(args []string) ([]string, editor.SearchOptions) {
	var (
		terms []string
		opts  editor.SearchOptions
	)
	for _, arg := range args {
		switch arg {
		case "--case":
			opts.MatchCase = true
		case "--word":
			opts.WholeWord = true
		default:
			terms = append(terms, arg)
		}
	}
	return terms, opts
}

func (a *App) find(_ context.Context, args []string) error {
	terms, opts := searchArgs(args)
	term := strings.Join(terms, " ")
	if term == "" {
		var err error
		if term, err = GetSimpleText(a.reader, "Find what?", a.out); err != nil {
			return err
		}
	}

	n, err := editor.CountMatches(a.buffer.GetText(), term, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d match(es) for %q\n", n, term)
	return nil
}

// replace swaps every occurrence in the body. With fewer than two words on
// the line both terms are asked for, so they may contain spaces.
func (a *App) replace(_ context.Context, args []string) error {
	terms, opts := searchArgs(args)

	var from, to string
	if len(terms) == 2 {
		from, to = terms[0], terms[1]
	} else {
		var err error
		if from, err = GetSimpleText(a.reader, "Find what?", a.out); err != nil {
			return err
		}
		if to, err = GetSimpleText(a.reader, "Replace with?", a.out); err != nil {
			return err
		}
	}

	body, n, err := editor.ReplaceAll(a.buffer.GetHTML(), from, to, opts)
	if err != nil {
		return err
	}
	if n > 0 {
		a.buffer.Apply(body)
	}
	fmt.Fprintf(a.out, "Replaced %d occurrence(s).\n", n)
	return nil
}

func (a *App) stats(_ context.Context, _ []string) error {
	s := editor.CountStats(a.buffer.GetText())
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Words:\t%d\n", s.Words)
	fmt.Fprintf(tw, "Characters:\t%d\n", s.Characters)
	fmt.Fprintf(tw, "Characters (no spaces):\t%d\n", s.CharactersNoSpaces)
	return tw.Flush()
}

func (a *App) outline(_ context.Context, _ []string) error {
	headings := editor.Outline(a.buffer.GetHTML())
	if len(headings) == 0 {
		fmt.Fprintln(a.out, "No headings.")
		return nil
	}
	for _, h := range headings {
		fmt.Fprintf(a.out, "%s%s\n", strings.Repeat("  ", h.Level-1), h.Text)
	}
	return nil
}

func (a *App) save(ctx context.Context, _ []string) error {
	if err := a.editor.Save(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Saved.")
	return nil
}

func (a *App) name(_ context.Context, args []string) error {
	if err := a.editor.Rename(strings.Join(args, " ")); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Renamed to %q. Save to keep the new name.\n", a.editor.Status().Name)
	return nil
}

func (a *App) export(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usageError("export <html|txt|ty|pdf> [path]")
	}
	format, err := editor.ParseFormat(args[0])
	if err != nil {
		return err
	}

	art, err := a.editor.Export(ctx, format)
	if err != nil {
		return err
	}

	target := ""
	if len(args) == 2 {
		target = args[1]
	} else {
		dir, err := filex.EnsureDir(a.config.ExportDir)
		if err != nil {
			return err
		}
		target = filepath.Join(dir, art.Filename)
	}
	if err := filex.WriteFileAtomic(target, art.Data, 0o600); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Exported to %s\n", target)
	return nil
}

// back returns to the File Picker.
func (a *App) back(ctx context.Context, _ []string) error {
	nav, err := a.editor.Navigate(models.ToList(), a.confirm)
	if err != nil {
		return err
	}
	return a.follow(ctx, nav)
}

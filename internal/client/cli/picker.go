package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/eutype/internal/client/client"
	"github.com/dmitrijs2005/eutype/internal/client/editor"
	"github.com/dmitrijs2005/eutype/internal/client/models"
	"github.com/dmitrijs2005/eutype/internal/client/services"
	"github.com/dmitrijs2005/eutype/internal/common"
	"github.com/dmitrijs2005/eutype/internal/filex"
)

const timeLayout = "02-01-2006 15:04"

func (a *App) pickerCommands() map[string]command {
	return map[string]command{
		"l":        a.list,
		"list":     a.list,
		"new":      a.newDocument,
		"open":     a.open,
		"rename":   a.rename,
		"delete":   a.delete,
		"info":     a.info,
		"download": a.download,
		"usage":    a.usage,
		"recent":   a.recent,
		"whoami":   a.whoami,
		"logout":   a.logout,
	}
}

func usageError(usage string) error {
	return fmt.Errorf("%w: usage: %s", common.ErrInvalidInput, usage)
}

// list prints the documents of a folder, the last used one by default.
func (a *App) list(ctx context.Context, args []string) error {
	folderID := a.files.LastFolder(ctx)
	if len(args) > 0 {
		folderID = args[0]
		if folderID == "/" {
			folderID = ""
		}
	}

	ov, err := a.files.Overview(ctx, folderID)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, f := range ov.Listing.Folders {
		fmt.Fprintf(tw, "%s\t[%s]\t\t\n", f.ID, f.Name)
	}
	for _, f := range ov.Listing.Files {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			f.ID, models.DocumentName(f.Filename), models.HumanSize(f.Size), formatTime(f.ModifiedAt))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(ov.Listing.Files) == 0 {
		fmt.Fprintln(a.out, "No documents yet. Use 'new <name>' to create one.")
	}
	if ov.Usage != nil {
		fmt.Fprintf(a.out, "Storage: %s of %s used\n",
			models.HumanSize(ov.Usage.UsedBytes), models.HumanSize(ov.Usage.QuotaBytes))
	}
	return nil
}

func formatTime(ts models.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format(timeLayout)
}

// newDocument creates a document and opens it.
func (a *App) newDocument(ctx context.Context, args []string) error {
	name := strings.Join(args, " ")
	if name == "" {
		var err error
		if name, err = GetSimpleText(a.reader, "Enter document name", a.out); err != nil {
			return err
		}
	}
	if strings.TrimSpace(name) == "" {
		return usageError("new <name>")
	}
	if err := a.leaveEditor(models.ToList()); err != nil {
		return err
	}

	info, err := a.docs.Create(ctx, name, a.files.LastFolder(ctx))
	if err != nil {
		return err
	}
	return a.follow(ctx, models.ToEditor(info.ID))
}

func (a *App) open(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("open <id>")
	}
	id := models.FileID(args[0])
	if err := a.leaveEditor(models.ToEditor(id)); err != nil {
		return err
	}
	return a.openDocument(ctx, id)
}

// openDocument loads id into the editor. When loading fails the File
// Picker stays active.
func (a *App) openDocument(ctx context.Context, id models.FileID) error {
	nav, err := a.editor.Open(ctx, id)
	if err != nil {
		if nav.Kind == models.NavigateList {
			fmt.Fprintln(a.out, "Could not load the document.")
		}
		return err
	}

	st := a.editor.Status()
	fmt.Fprintf(a.out, "Opened %q (id %s). Type 'help' for editor commands.\n", st.Name, st.FileID)
	fmt.Fprintln(a.out, a.buffer.GetText())
	return nil
}

func (a *App) rename(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usageError("rename <id> <new name>")
	}
	if err := a.files.Rename(ctx, models.FileID(args[0]), strings.Join(args[1:], " ")); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Renamed.")
	return a.list(ctx, nil)
}

func (a *App) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("delete <id>")
	}
	id := models.FileID(args[0])
	if st := a.editor.Status(); st.State != editor.StateIdle && st.FileID == id {
		return fmt.Errorf("%w: close it before deleting", editor.ErrDocumentOpen)
	}

	info, err := a.files.Info(ctx, id)
	if err != nil {
		return err
	}
	if !a.confirm(fmt.Sprintf("Are you sure you want to delete %q?", info.Filename)) {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}
	if err := a.files.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted.")
	return a.list(ctx, nil)
}

func (a *App) info(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("info <id>")
	}
	f, err := a.files.Info(ctx, models.FileID(args[0]))
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", f.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", f.Filename)
	fmt.Fprintf(tw, "Size:\t%s\n", models.HumanSize(f.Size))
	fmt.Fprintf(tw, "Created:\t%s\n", formatTime(f.CreatedAt))
	fmt.Fprintf(tw, "Modified:\t%s\n", formatTime(f.ModifiedAt))
	if f.AppType != "" {
		fmt.Fprintf(tw, "App:\t%s\n", f.AppType)
	}
	if f.FolderID != "" {
		fmt.Fprintf(tw, "Folder:\t%s\n", f.FolderID)
	}
	return tw.Flush()
}

// download saves the raw file to path, or under its own name in the export
// directory.
func (a *App) download(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usageError("download <id> [path]")
	}
	id := models.FileID(args[0])

	target := ""
	if len(args) == 2 {
		target = args[1]
	} else {
		f, err := a.files.Info(ctx, id)
		if err != nil {
			return err
		}
		dir, err := filex.EnsureDir(a.config.ExportDir)
		if err != nil {
			return err
		}
		target = filepath.Join(dir, filepath.Base(f.Filename))
	}

	data, err := a.files.Download(ctx, id)
	if err != nil {
		return err
	}
	if err := filex.WriteFileAtomic(target, data, 0o600); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Downloaded %s to %s\n", models.HumanSize(int64(len(data))), target)
	return nil
}

func (a *App) usage(ctx context.Context, _ []string) error {
	u, err := a.files.Usage(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Storage: %s of %s used\n", models.HumanSize(u.UsedBytes), models.HumanSize(u.QuotaBytes))
	return nil
}

func (a *App) recent(ctx context.Context, _ []string) error {
	docs, err := a.files.Recent(ctx, recentLimit)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Fprintln(a.out, "No recent documents.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, d := range docs {
		saved := "-"
		if !d.SavedAt.IsZero() {
			saved = d.SavedAt.Local().Format(timeLayout)
		}
		fmt.Fprintf(tw, "%s\t%s\topened %s\tsaved %s\n", d.FileID, d.Name, d.OpenedAt.Local().Format(timeLayout), saved)
	}
	return tw.Flush()
}

func (a *App) whoami(ctx context.Context, _ []string) error {
	u, err := a.gate.Refresh(ctx)
	switch {
	case errors.Is(err, client.ErrUnauthorized), errors.Is(err, services.ErrNotAuthenticated):
		return err
	case err != nil:
		a.log.Warn(ctx, "refresh profile failed, showing cached user", "error", err)
		u = a.gate.User()
	}
	if u == nil {
		return errors.New("no user is signed in")
	}
	if u.Email != "" {
		fmt.Fprintf(a.out, "%s <%s>\n", u.Username, u.Email)
	} else {
		fmt.Fprintln(a.out, u.Username)
	}
	return nil
}

// logout ends the session at the backend and hands the shell the redirect
// to the login portal.
func (a *App) logout(ctx context.Context, _ []string) error {
	if err := a.leaveEditor(models.Navigation{}); err != nil {
		return err
	}
	return a.follow(ctx, a.gate.Logout(ctx))
}

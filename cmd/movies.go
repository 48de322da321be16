package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/cinefav/internal/controller"
	"github.com/desertthunder/cinefav/internal/formatter"
	"github.com/desertthunder/cinefav/internal/models"
	"github.com/desertthunder/cinefav/internal/shared"
	"github.com/desertthunder/cinefav/internal/tasks"
	"github.com/urfave/cli/v3"
)

// listOutput is the JSON shape of movies list.
type listOutput struct {
	Page   int            `json:"page"`
	Pages  int            `json:"pages"`
	Total  int            `json:"total"`
	Movies []models.Movie `json:"movies"`
}

// MoviesList prints one page of favorites after applying sort, filter and search flags.
func (r *Runner) MoviesList(ctx context.Context, cmd *cli.Command) error {
	ctrl, err := r.loadMovies(ctx)
	if err != nil {
		return err
	}

	tbl := ctrl.Table()
	if n := int(cmd.Int("page-size")); n > 0 {
		tbl.SetPageSize(n)
	}
	if err := applyTableFlags(tbl, cmd); err != nil {
		return err
	}
	for _, col := range cmd.StringSlice("hide") {
		if err := tbl.SetVisible(col, false); err != nil {
			return err
		}
	}
	tbl.SetPage(int(cmd.Int("page")) - 1)

	v := ctrl.View()
	if cmd.Bool("json") {
		return r.writeJSON(listOutput{Page: v.Page + 1, Pages: v.PageCount, Total: v.Total, Movies: v.Rows}, cmd.Bool("pretty"))
	}

	if v.Total == 0 {
		return r.writePlain("No data available\n")
	}

	headers := make([]string, len(v.Columns))
	for i, c := range v.Columns {
		headers[i] = c.Title
		if key, dir := tbl.Sort(); key == c.Key {
			headers[i] += " (" + dir.String() + ")"
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
	for _, m := range v.Rows {
		t.Row(listCells(v, m)...)
	}

	if err := r.writePlain("%s\n", t.String()); err != nil {
		return err
	}
	return r.writePlain("page %d/%d • %d of %d favorites\n", v.Page+1, v.PageCount, v.Total, len(ctrl.Movies()))
}

// MoviesView prints one favorite and optionally opens its poster.
func (r *Runner) MoviesView(ctx context.Context, cmd *cli.Command) error {
	ctrl, err := r.loadMovies(ctx)
	if err != nil {
		return err
	}

	rec, err := findMovie(ctrl, int(cmd.Int("id")))
	if err != nil {
		return err
	}
	if err := ctrl.OpenView(rec); err != nil {
		return err
	}
	defer ctrl.Close()

	r.writePlainHeader(rec.Title)
	for _, row := range [][2]string{
		{"ID", rec.Get(models.FieldID)},
		{"Type", rec.Type},
		{"Director", rec.Director},
		{"Budget", rec.Budget},
		{"Location", rec.Location},
		{"Duration", formatter.FormatDuration(rec.Duration)},
		{"Time", rec.Time},
		{"Poster", rec.Image},
	} {
		r.writePlain("%-10s %s\n", row[0]+":", row[1])
	}

	if !cmd.Bool("open") {
		return nil
	}
	if rec.Image == "" {
		return fmt.Errorf("%w: %q has no poster", shared.ErrInvalidArgument, rec.Title)
	}
	r.logger.Info("opening poster", "url", rec.Image)
	if err := r.openURL(rec.Image); err != nil {
		return fmt.Errorf("failed to open poster: %w", err)
	}
	return nil
}

// MoviesAdd creates a favorite through the add form.
func (r *Runner) MoviesAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	ctrl := r.newController()
	if err := ctrl.OpenAdd(); err != nil {
		return err
	}
	if err := fillForm(ctrl, cmd, false); err != nil {
		return err
	}
	if err := attachImage(ctrl, cmd.String("image")); err != nil {
		return err
	}
	return r.submit(ctx, ctrl)
}

// MoviesUpdate edits a favorite. Flags that are not set keep the stored values.
func (r *Runner) MoviesUpdate(ctx context.Context, cmd *cli.Command) error {
	ctrl, err := r.loadMovies(ctx)
	if err != nil {
		return err
	}

	rec, err := findMovie(ctrl, int(cmd.Int("id")))
	if err != nil {
		return err
	}
	if err := ctrl.OpenEdit(rec); err != nil {
		return err
	}
	if err := fillForm(ctrl, cmd, true); err != nil {
		return err
	}
	if p := cmd.String("image"); p != "" {
		if err := attachImage(ctrl, p); err != nil {
			return err
		}
	}
	return r.submit(ctx, ctrl)
}

// MoviesDelete removes a favorite after confirmation.
func (r *Runner) MoviesDelete(ctx context.Context, cmd *cli.Command) error {
	ctrl, err := r.loadMovies(ctx)
	if err != nil {
		return err
	}

	rec, err := findMovie(ctrl, int(cmd.Int("id")))
	if err != nil {
		return err
	}

	if !cmd.Bool("yes") {
		ok, err := r.confirm(fmt.Sprintf("Are you sure you want to delete %q?", rec.Title))
		if err != nil {
			return err
		}
		if !ok {
			return r.writePlain("Cancelled\n")
		}
	}

	if err := ctrl.OpenDelete(rec.ID); err != nil {
		return err
	}
	op, err := ctrl.ConfirmDelete()
	if err != nil {
		return err
	}

	r.logger.Info("deleting movie", "id", rec.ID)
	if err := ctrl.Drive(ctx, op); err != nil {
		if msg, ok := ctrl.Alert(); ok {
			return fmt.Errorf("%s: %w", msg, err)
		}
		return err
	}
	return r.writePlain("✓ Deleted %q\n", rec.Title)
}

// MoviesExport writes the filtered and sorted favorites to a file.
func (r *Runner) MoviesExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	ctrl, err := r.loadMovies(ctx)
	if err != nil {
		return err
	}
	if err := applyTableFlags(ctrl.Table(), cmd); err != nil {
		return err
	}

	rows := ctrl.Table().Rows(ctrl.Movies())
	path, err := formatter.WriteExport(format, rows, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("exported favorites", "format", format, "path", path, "count", len(rows))
	return r.writePlain("✓ Exported %d favorites to %s\n", len(rows), path)
}

// MoviesPoster downloads a favorite's poster.
func (r *Runner) MoviesPoster(ctx context.Context, cmd *cli.Command) error {
	ctrl, err := r.loadMovies(ctx)
	if err != nil {
		return err
	}

	rec, err := findMovie(ctrl, int(cmd.Int("id")))
	if err != nil {
		return err
	}

	r.logger.Info("downloading poster", "url", rec.Image)
	path, err := formatter.SavePoster(ctx, r.httpClient, rec, cmd.String("output"))
	if err != nil {
		return err
	}
	return r.writePlain("✓ Poster saved to %s\n", path)
}

// MoviesPosters downloads the posters of every favorite matching the table flags.
func (r *Runner) MoviesPosters(ctx context.Context, cmd *cli.Command) error {
	ctrl, err := r.loadMovies(ctx)
	if err != nil {
		return err
	}
	if err := applyTableFlags(ctrl.Table(), cmd); err != nil {
		return err
	}
	rows := ctrl.Table().Rows(ctrl.Movies())

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.DownloadPoster, tasks.SkipPoster:
				r.writePlain("  [%d/%d] %s\n", update.Step, update.Total, update.Message)
			case tasks.WriteManifest:
				r.writePlain("📄 %s\n", update.Message)
			}
		}
	}()

	r.writePlain("📥 Downloading %d posters...\n", len(rows))
	result, err := tasks.DownloadPosters(ctx, progressCh, rows, tasks.PosterOpts{
		OutputDir:  cmd.String("output-dir"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  r.config.API.RateLimit,
		Client:     r.httpClient,
	})
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.logger.Info("downloaded posters", "dir", result.OutputDirectory, "downloaded", result.Downloaded, "failed", result.Failed)
	r.writePlain("\n✓ %d downloaded, %d skipped, %d failed in %s\n", result.Downloaded, result.Skipped, result.Failed, result.OutputDirectory)
	if result.Failed > 0 {
		return fmt.Errorf("%w: %d posters failed to download", shared.ErrAPIRequest, result.Failed)
	}
	return nil
}

// loadMovies builds a controller and runs its first load inline.
func (r *Runner) loadMovies(ctx context.Context) (*controller.Controller, error) {
	if err := r.connect(); err != nil {
		return nil, err
	}

	ctrl := r.newController()
	if err := ctrl.Drive(ctx, ctrl.Load()); err != nil {
		return nil, fmt.Errorf("failed to load movies: %w", err)
	}
	r.logger.Debug("loaded movies", "count", len(ctrl.Movies()))
	return ctrl, nil
}

// submit sends the open form and reports the toast it produced.
func (r *Runner) submit(ctx context.Context, ctrl *controller.Controller) error {
	op, err := ctrl.Submit()
	if err != nil {
		return err
	}

	r.logger.Info("saving movie", "op", op.Kind, "id", op.ID)
	err = ctrl.Drive(ctx, op)
	t, shown := ctrl.Toast()
	if err != nil {
		if shown {
			return fmt.Errorf("%s: %w", t.Message, err)
		}
		return err
	}
	if shown {
		return r.writePlain("✓ %s\n", t.Message)
	}
	return nil
}

func findMovie(ctrl *controller.Controller, id int) (models.Movie, error) {
	rec, ok := ctrl.Find(id)
	if !ok {
		return models.Movie{}, fmt.Errorf("%w: id %d", shared.ErrMovieNotFound, id)
	}
	return rec, nil
}

// fillForm copies field flags into the open form. With onlySet, flags left unset are skipped.
func fillForm(ctrl *controller.Controller, cmd *cli.Command, onlySet bool) error {
	for _, name := range models.RequiredFields {
		if onlySet && !cmd.IsSet(name) {
			continue
		}

		value := cmd.String(name)
		if name == models.FieldType {
			kind, err := parseKind(value)
			if err != nil {
				return err
			}
			value = kind
		}
		if err := ctrl.SetField(name, value); err != nil {
			return err
		}
	}
	return nil
}

// parseKind matches a type flag against the known kinds, ignoring case.
func parseKind(s string) (string, error) {
	for _, k := range models.Kinds {
		if strings.EqualFold(strings.TrimSpace(s), k) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: type must be one of %s", shared.ErrInvalidFlag, strings.Join(models.Kinds, ", "))
}

func attachImage(ctrl *controller.Controller, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: could not read image: %v", shared.ErrInvalidArgument, err)
	}
	if err := ctrl.AttachImage(models.NewImage(filepath.Base(path), data)); err != nil {
		if t, ok := ctrl.Toast(); ok {
			return fmt.Errorf("%s: %w", t.Message, err)
		}
		return err
	}
	return nil
}

// applyTableFlags applies --sort, --desc, --filter and --search.
func applyTableFlags(tbl *controller.Table, cmd *cli.Command) error {
	if col := cmd.String("sort"); col != "" {
		dir := controller.SortAsc
		if cmd.Bool("desc") {
			dir = controller.SortDesc
		}
		if err := tbl.SortBy(col, dir); err != nil {
			return err
		}
	}

	for _, f := range cmd.StringSlice("filter") {
		col, value, ok := strings.Cut(f, "=")
		if !ok {
			return fmt.Errorf("%w: filter %q must be column=value", shared.ErrInvalidFlag, f)
		}
		if err := tbl.SetFilter(strings.TrimSpace(col), strings.TrimSpace(value)); err != nil {
			return err
		}
	}

	if q := cmd.String("search"); q != "" {
		tbl.SetSearch(q)
	}
	return nil
}

func listCells(v controller.View, m models.Movie) []string {
	cells := v.Cells(m)
	for i, c := range v.Columns {
		if c.Key == models.FieldDuration {
			cells[i] = formatter.FormatDuration(m.Duration)
		}
	}
	return cells
}

package controller

import (
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/cinefav/internal/models"
	"github.com/desertthunder/cinefav/internal/shared"
)

func titles(rows []models.Movie) string {
	s := ""
	for i, m := range rows {
		if i > 0 {
			s += ","
		}
		s += m.Title
	}
	return s
}

func sample() []models.Movie {
	mk := func(id int, title, kind, director string, duration int) models.Movie {
		return models.Movie{ID: id, Title: title, Type: kind, Director: director, Budget: "$1", Location: "L", Duration: duration, Time: "t"}
	}
	return []models.Movie{
		mk(1, "dune", models.KindMovie, "Villeneuve", 155),
		mk(2, "Arrival", models.KindMovie, "Villeneuve", 116),
		mk(3, "Severance", models.KindTVShow, "Stiller", 55),
		mk(4, "Blade Runner", models.KindMovie, "Scott", 117),
		mk(5, "Andor", models.KindTVShow, "Gilroy", 55),
	}
}

func TestTable(t *testing.T) {
	t.Run("Columns In Display Order", func(t *testing.T) {
		want := "Title,Type,Director,Budget,Location,Duration,Time,Image"
		got := ""
		for i, c := range NewTable(0).VisibleColumns() {
			if i > 0 {
				got += ","
			}
			got += c.Title
		}
		if got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	})

	t.Run("Unsorted Keeps Received Order", func(t *testing.T) {
		v := NewTable(0).View(sample())
		if titles(v.Rows) != "dune,Arrival,Severance,Blade Runner,Andor" {
			t.Errorf("unexpected order %s", titles(v.Rows))
		}
	})

	t.Run("Sort", func(t *testing.T) {
		tt := []struct {
			key  string
			dir  SortDir
			want string
		}{
			{key: "title", dir: SortAsc, want: "Andor,Arrival,Blade Runner,dune,Severance"},
			{key: "Title", dir: SortDesc, want: "Severance,dune,Blade Runner,Arrival,Andor"},
			{key: "duration", dir: SortAsc, want: "Severance,Andor,Arrival,Blade Runner,dune"},
			{key: "duration", dir: SortDesc, want: "dune,Blade Runner,Arrival,Severance,Andor"},
			{key: "director", dir: SortAsc, want: "Gilroy,Scott,Stiller,Villeneuve,Villeneuve"},
		}

		for _, tc := range tt {
			t.Run(fmt.Sprintf("%s %s", tc.key, tc.dir), func(t *testing.T) {
				tbl := NewTable(0)
				if err := tbl.SortBy(tc.key, tc.dir); err != nil {
					t.Fatalf("SortBy: %v", err)
				}
				rows := tbl.View(sample()).Rows
				got := titles(rows)
				if tc.key == "director" {
					got = ""
					for i, m := range rows {
						if i > 0 {
							got += ","
						}
						got += m.Director
					}
				}
				if got != tc.want {
					t.Errorf("expected %s, got %s", tc.want, got)
				}
			})
		}
	})

	t.Run("Sort Is Stable", func(t *testing.T) {
		tbl := NewTable(0)
		_ = tbl.SortBy("director", SortAsc)
		rows := tbl.View(sample()).Rows
		if rows[3].Title != "dune" || rows[4].Title != "Arrival" {
			t.Errorf("ties must keep received order, got %s", titles(rows))
		}

		_ = tbl.SortBy("duration", SortDesc)
		rows = tbl.View(sample()).Rows
		if rows[3].Title != "Severance" || rows[4].Title != "Andor" {
			t.Errorf("descending ties must keep received order, got %s", titles(rows))
		}
	})

	t.Run("CycleSort", func(t *testing.T) {
		tbl := NewTable(0)
		steps := []SortDir{SortAsc, SortDesc, SortNone, SortAsc}
		for i, want := range steps {
			if err := tbl.CycleSort("title"); err != nil {
				t.Fatalf("CycleSort: %v", err)
			}
			if _, dir := tbl.Sort(); dir != want {
				t.Errorf("step %d: expected %s, got %s", i, want, dir)
			}
		}
		_ = tbl.CycleSort("duration")
		if key, dir := tbl.Sort(); key != models.FieldDuration || dir != SortAsc {
			t.Errorf("switching column should start ascending, got %s %s", key, dir)
		}
	})

	t.Run("Unknown Column", func(t *testing.T) {
		tbl := NewTable(0)
		for _, err := range []error{
			tbl.SortBy("rating", SortAsc),
			tbl.SetFilter("rating", "x"),
			tbl.SetVisible("rating", false),
			tbl.ToggleColumn("rating"),
		} {
			if !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		}
	})

	t.Run("Visibility", func(t *testing.T) {
		tbl := NewTable(0)
		_ = tbl.ToggleColumn("image")
		_ = tbl.SetVisible("budget", false)

		v := tbl.View(sample())
		if len(v.Columns) != 6 || len(v.Cells(v.Rows[0])) != 6 {
			t.Errorf("expected 6 visible columns, got %d", len(v.Columns))
		}

		_ = tbl.ToggleColumn("image")
		if len(tbl.VisibleColumns()) != 7 {
			t.Error("toggle should show the column again")
		}
	})

	t.Run("Column Filters", func(t *testing.T) {
		tbl := NewTable(0)
		_ = tbl.SetFilter("type", "tv")
		if got := titles(tbl.View(sample()).Rows); got != "Severance,Andor" {
			t.Errorf("expected TV shows, got %s", got)
		}

		_ = tbl.SetFilter("director", "GIL")
		if got := titles(tbl.View(sample()).Rows); got != "Andor" {
			t.Errorf("expected filters to combine, got %s", got)
		}

		_ = tbl.SetFilter("director", "")
		if len(tbl.Filters()) != 1 {
			t.Errorf("empty value should remove the filter, got %v", tbl.Filters())
		}

		tbl.ClearFilters()
		if len(tbl.View(sample()).Rows) != 5 {
			t.Error("expected all rows after clearing")
		}
	})

	t.Run("Fuzzy Search", func(t *testing.T) {
		tbl := NewTable(0)
		_ = tbl.SortBy("title", SortAsc)
		tbl.SetSearch("vlnv")

		if got := titles(tbl.View(sample()).Rows); got != "Arrival,dune" {
			t.Errorf("expected Villeneuve titles in sort order, got %s", got)
		}

		tbl.SetSearch("zzzz")
		v := tbl.View(sample())
		if len(v.Rows) != 0 || v.Total != 0 || v.PageCount != 1 {
			t.Errorf("expected empty single page, got %+v", v)
		}
	})

	t.Run("Pagination", func(t *testing.T) {
		var movies []models.Movie
		for i := 1; i <= 23; i++ {
			movies = append(movies, models.Movie{ID: i, Title: fmt.Sprintf("m%02d", i)})
		}

		tbl := NewTable(0)
		v := tbl.View(movies)
		if len(v.Rows) != DefaultPageSize || v.PageCount != 3 || v.Total != 23 {
			t.Fatalf("unexpected first page %d rows, %d pages", len(v.Rows), v.PageCount)
		}

		tbl.NextPage(v)
		tbl.NextPage(tbl.View(movies))
		v = tbl.View(movies)
		if v.Page != 2 || len(v.Rows) != 3 || v.Rows[0].Title != "m21" {
			t.Errorf("unexpected last page %+v", v)
		}
		tbl.NextPage(v)
		if tbl.Page() != 2 {
			t.Error("next on the last page should stay put")
		}

		tbl.SetPage(99)
		if v := tbl.View(movies); v.Page != 2 {
			t.Errorf("out of range page should clamp, got %d", v.Page)
		}

		_ = tbl.SetFilter("title", "m0")
		if v := tbl.View(movies); v.Page != 0 || v.Total != 9 {
			t.Errorf("filtering should reset to the first page, got page %d total %d", v.Page, v.Total)
		}

		tbl.PrevPage(tbl.View(movies))
		if tbl.Page() != 0 {
			t.Error("prev on the first page should stay put")
		}

		tbl.SetPageSize(5)
		if v := tbl.View(movies); len(v.Rows) != 5 || v.PageCount != 2 {
			t.Errorf("expected 5 rows over 2 pages, got %d over %d", len(v.Rows), v.PageCount)
		}
	})

	t.Run("Input Not Modified", func(t *testing.T) {
		movies := sample()
		tbl := NewTable(0)
		_ = tbl.SortBy("title", SortAsc)
		_ = tbl.View(movies)
		if movies[0].Title != "dune" {
			t.Error("view must not reorder the collection")
		}
	})
}

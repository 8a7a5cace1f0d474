package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/fyyur/internal/model"
)

// genreTable is one of the ordered tag tables hanging off venues or artists.
type genreTable struct {
	table string
	fk    string
}

var (
	venueGenres  = genreTable{table: "venue_genres", fk: "venue_id"}
	artistGenres = genreTable{table: "artist_genres", fk: "artist_id"}
)

// load returns the genres of owner in submission order.
func (g genreTable) load(ctx context.Context, q sqlx.QueryerContext, owner uint64) (model.Genres, error) {
	query := fmt.Sprintf("SELECT genre FROM %s WHERE %s = ? ORDER BY seq", g.table, g.fk)
	out := model.Genres{}
	if err := sqlx.SelectContext(ctx, q, &out, query, owner); err != nil {
		return nil, err
	}
	return out, nil
}

// replace swaps the genres of owner for genres inside tx.
func (g genreTable) replace(ctx context.Context, tx *sqlx.Tx, owner uint64, genres model.Genres) error {
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = ?", g.table, g.fk), owner); err != nil {
		return err
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s, seq, genre) VALUES (?, ?, ?)", g.table, g.fk)
	for i, genre := range genres {
		if _, err := tx.ExecContext(ctx, insert, owner, i, genre); err != nil {
			return err
		}
	}
	return nil
}

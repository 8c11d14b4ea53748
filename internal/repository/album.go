package repository

import (
	"context"

	"github.com/deppfellow/crud-api/internal/database"
)

const albumColumns = "album_id, title, artist_id"

// Album is a row of the album table.
type Album struct {
	ID       int64  `json:"album_id" db:"album_id"`
	Title    string `json:"title" db:"title"`
	ArtistID int64  `json:"artist_id" db:"artist_id"`
}

// AlbumRepository is read-only; it backs the artist delete guard.
type AlbumRepository struct {
	exec Executor
}

func NewAlbumRepository(exec Executor) *AlbumRepository {
	return &AlbumRepository{exec: exec}
}

func (r *AlbumRepository) ListByArtist(ctx context.Context, artistID int64) ([]Album, error) {
	return fetchList[Album](ctx, r.exec,
		`SELECT `+albumColumns+` FROM album WHERE artist_id = @artist_id ORDER BY title`,
		database.Binds{idBind("artist_id", artistID)})
}

func (r *AlbumRepository) GetByID(ctx context.Context, id int64) (*Album, error) {
	return fetchOne[Album](ctx, r.exec,
		`SELECT `+albumColumns+` FROM album WHERE album_id = @album_id`,
		database.Binds{idBind("album_id", id)},
		notFound("album", "An album with that ID does not exist."))
}

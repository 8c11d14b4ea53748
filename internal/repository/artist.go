package repository

import (
	"context"
	"strings"

	"github.com/deppfellow/crud-api/internal/database"
	"github.com/deppfellow/crud-api/internal/validation"
)

const (
	artistNotFoundMessage  = "An artist with that ID does not exist."
	artistHasAlbumsMessage = "You cannot delete an artist that still has albums."
	artistColumns          = "artist_id, name"
)

// Artist is a row of the artist table.
type Artist struct {
	ID   int64  `json:"artist_id" db:"artist_id"`
	Name string `json:"name" db:"name"`
}

// ArtistInput is the body accepted on artist insert and update.
type ArtistInput struct {
	Name string `json:"name" validate:"required,max=120"`
}

func (in *ArtistInput) Validate() error {
	return validation.Struct(in)
}

type ArtistRepository struct {
	exec   Executor
	albums *AlbumRepository
}

func NewArtistRepository(exec Executor, albums *AlbumRepository) *ArtistRepository {
	return &ArtistRepository{exec: exec, albums: albums}
}

func (r *ArtistRepository) List(ctx context.Context) ([]Artist, error) {
	return fetchList[Artist](ctx, r.exec,
		`SELECT `+artistColumns+` FROM artist ORDER BY name`, nil)
}

// Search matches artists whose name contains text, case-insensitively.
func (r *ArtistRepository) Search(ctx context.Context, text string) ([]Artist, error) {
	return fetchList[Artist](ctx, r.exec,
		`SELECT `+artistColumns+` FROM artist WHERE name ILIKE @search ESCAPE '\' ORDER BY name`,
		database.Binds{{Name: "search", Value: containsPattern(text)}})
}

func (r *ArtistRepository) GetByID(ctx context.Context, id int64) (*Artist, error) {
	return fetchOne[Artist](ctx, r.exec,
		`SELECT `+artistColumns+` FROM artist WHERE artist_id = @artist_id`,
		database.Binds{idBind("artist_id", id)},
		notFound("artist", artistNotFoundMessage))
}

// Insert validates in and creates an artist, returning the new id.
func (r *ArtistRepository) Insert(ctx context.Context, in *ArtistInput) (string, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Check(in); err != nil {
		return "", err
	}

	return insertID(ctx, r.exec,
		`INSERT INTO artist (name) VALUES (@name) RETURNING artist_id`,
		database.Binds{{Name: "name", Value: in.Name}})
}

func (r *ArtistRepository) Update(ctx context.Context, id int64, in *ArtistInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Check(in); err != nil {
		return err
	}

	return exactlyOne(ctx, r.exec,
		`UPDATE artist SET name = @name WHERE artist_id = @artist_id`,
		database.Binds{{Name: "name", Value: in.Name}, idBind("artist_id", id)},
		notFound("artist", artistNotFoundMessage))
}

// RemoveByID deletes an artist that has no albums.
func (r *ArtistRepository) RemoveByID(ctx context.Context, id int64) error {
	albums, err := r.albums.ListByArtist(ctx, id)
	if err != nil {
		return err
	}
	if len(albums) > 0 {
		return conflict("artist", artistHasAlbumsMessage)
	}

	return exactlyOne(ctx, r.exec,
		`DELETE FROM artist WHERE artist_id = @artist_id`,
		database.Binds{idBind("artist_id", id)},
		notFound("artist", artistNotFoundMessage))
}

package repository

import (
	"fmt"
	"reflect"
	"time"

	"github.com/deppfellow/crud-api/internal/database"
	"github.com/go-viper/mapstructure/v2"
)

// dateLayout is the wire format of DATE columns.
const dateLayout = "2006-01-02"

var timeType = reflect.TypeOf(time.Time{})

// timeToDateString renders DATE values as YYYY-MM-DD when the target is a string.
func timeToDateString(from, to reflect.Type, data any) (any, error) {
	if from != timeType || to.Kind() != reflect.String {
		return data, nil
	}
	return data.(time.Time).Format(dateLayout), nil
}

// decodeOne decodes a record into T using `db` struct tags.
func decodeOne[T any](record database.Record) (T, error) {
	var out T

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "db",
		Result:     &out,
		DecodeHook: mapstructure.DecodeHookFunc(timeToDateString),
	})
	if err != nil {
		return out, fmt.Errorf("building record decoder: %w", err)
	}

	if err := decoder.Decode(map[string]any(record)); err != nil {
		return out, fmt.Errorf("decoding record: %w", err)
	}
	return out, nil
}

func decodeAll[T any](records []database.Record) ([]T, error) {
	out := make([]T, 0, len(records))
	for _, record := range records {
		v, err := decodeOne[T](record)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

package pgschema

import (
	"context"
	"log"

	"github.com/jackc/pgx"
	_ "github.com/jackc/pgx/stdlib"
	"github.com/pkg/errors"

	"github.com/tabledriver/typeschema/schema"
)

type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

func connect(config *Config) (*pgx.Conn, error) {
	db, err := pgx.Connect(pgx.ConnConfig{
		Host:     config.Host,
		Port:     uint16(config.Port),
		User:     config.User,
		Database: config.Database,
		Password: config.Password,
	})
	if err != nil {
		return nil, errors.Wrap(err, "couldn't open database")
	}
	return db, nil
}

// Describe reads a table's column list out of information_schema and maps
// it to a field list. Column order follows ordinal position; nullability
// follows is_nullable. SQL types with no counterpart come out as Null and
// get logged.
func Describe(ctx context.Context, config *Config, table string) ([]schema.Field, error) {
	db, err := connect(config)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't connect to database")
	}
	defer db.Close()

	rows, err := db.QueryEx(
		ctx,
		"SELECT column_name, data_type, is_nullable FROM information_schema.columns WHERE table_name = $1 ORDER BY ordinal_position",
		nil,
		table,
	)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't describe table")
	}

	var descriptions [][]string
	for rows.Next() {
		desc := make([]string, 3)
		if err := rows.Scan(&desc[0], &desc[1], &desc[2]); err != nil {
			return nil, errors.Wrap(err, "couldn't scan table description")
		}
		descriptions = append(descriptions, desc)
	}
	if len(descriptions) == 0 {
		return nil, errors.Errorf("table %s doesn't exist or has no columns", table)
	}

	fields := make([]schema.Field, len(descriptions))
	for i := range descriptions {
		fields[i] = schema.Field{
			Name:     descriptions[i][0],
			Type:     typeOfSQLType(descriptions[i][1]),
			Nullable: descriptions[i][2] == "YES",
		}
	}

	return fields, nil
}

func typeOfSQLType(sqlType string) schema.Type {
	switch sqlType {
	case "boolean":
		return schema.Boolean
	case "smallint":
		return schema.Short
	case "integer":
		return schema.Integer
	case "bigint":
		return schema.Long
	case "real":
		return schema.Float
	case "double precision":
		return schema.Double
	case "numeric", "decimal":
		return schema.DecimalDefault
	case "text", "character", "character varying":
		return schema.String
	case "bytea":
		return schema.Binary
	case "date":
		return schema.Date
	case "timestamp without time zone", "timestamp with time zone":
		return schema.Timestamp
	default:
		log.Printf("unsupported postgres type: %s", sqlType)
		return schema.Null
	}
}

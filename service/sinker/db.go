package sinker

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"reflect"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

const structuresSQL = `
-- ----------------------------
-- Table structure for feed_depth_tick
-- ----------------------------
CREATE TABLE IF NOT EXISTS "feed_depth_tick" (
"trading_day" VARCHAR(9) NOT NULL,
"instrument_id" VARCHAR(81) NOT NULL,
"update_time" VARCHAR(9) NOT NULL,
"update_millisec" INTEGER NOT NULL,
"last_price" FLOAT NOT NULL,
"volume" INTEGER NOT NULL,
"turnover" FLOAT NOT NULL,
"open_interest" FLOAT NOT NULL,
"bid_price" FLOAT NOT NULL,
"bid_volume" INTEGER NOT NULL,
"ask_price" FLOAT NOT NULL,
"ask_volume" INTEGER NOT NULL,
PRIMARY KEY ("trading_day", "instrument_id", "update_time", "update_millisec")
);

-- ----------------------------
-- Table structure for feed_trading_account
-- ----------------------------
CREATE TABLE IF NOT EXISTS "feed_trading_account" (
"trading_day" VARCHAR(9) NOT NULL,
"broker_id" VARCHAR(11) NOT NULL,
"account_id" VARCHAR(13) NOT NULL,
"pre_balance" FLOAT NOT NULL,
"balance" FLOAT NOT NULL,
"deposit" FLOAT NOT NULL,
"withdraw" FLOAT NOT NULL,
"profit" FLOAT NOT NULL,
"fee" FLOAT NOT NULL,
"margin" FLOAT NOT NULL,
"available" FLOAT NOT NULL,
PRIMARY KEY ("trading_day", "broker_id", "account_id")
);`

var (
	connPattern = regexp.MustCompile(
		"(?P<proto>(?:sqlite3|postgres|pgx))://(?P<value>.+)",
	)

	driverMap = map[string]string{
		"postgres": "pgx",
	}
)

// InitDB opens conn and verifies it with a ping. The conn string
// carries the driver as scheme: sqlite3://, postgres:// or pgx://.
func InitDB(conn string) (*sql.DB, error) {
	matchs := connPattern.FindStringSubmatch(conn)
	if len(matchs) < 1 {
		return nil, errors.New("invalid db conn string")
	}

	proto := matchs[connPattern.SubexpIndex("proto")]
	value := matchs[connPattern.SubexpIndex("value")]

	if driver, exist := driverMap[proto]; exist {
		proto = driver
	}

	log.Print("Try to open db: ", conn)

	db, err := sql.Open(proto, value)
	if err != nil {
		return nil, errors.WithMessagef(err, "parse database[%s] failed", conn)
	}

	if err = db.Ping(); err != nil {
		return nil, errors.WithMessagef(err, "open database[%s] failed", conn)
	}

	return db, nil
}

// InitTables creates the sink tables. Partitioned deployments create
// them externally and skip this.
func InitTables(db *sql.DB) error {
	_, err := db.Exec(structuresSQL)

	return errors.WithMessage(err, "create sink tables failed")
}

// insertSQL renders the insert statement for typ's sql tagged fields,
// in declaration order, or restricted to fieldNames when given. The
// returned index list locates the bound struct fields.
func insertSQL(typ reflect.Type, tblName string, fieldNames ...string) (string, []int, error) {
	var (
		columns []string
		args    []string
		fields  []int
	)

	if len(fieldNames) == 0 {
		for i := 0; i < typ.NumField(); i++ {
			field := typ.Field(i)

			column := field.Tag.Get("sql")
			if column == "" {
				continue
			}

			fields = append(fields, i)
			columns = append(columns, column)
			args = append(args, fmt.Sprintf("$%d", len(columns)))
		}
	} else {
		for _, name := range fieldNames {
			field, ok := typ.FieldByName(name)
			if !ok {
				return "", nil, errors.Errorf(
					"%s has no field name: %s", typ.Name(), name,
				)
			}

			column := field.Tag.Get("sql")
			if column == "" {
				return "", nil, errors.Errorf(
					"%s has no sql tag", field.Name,
				)
			}

			fields = append(fields, field.Index[0])
			columns = append(columns, column)
			args = append(args, fmt.Sprintf("$%d", len(columns)))
		}
	}

	if len(columns) == 0 {
		return "", nil, errors.Errorf(
			"%s has no sql tagged field", typ.Name(),
		)
	}

	return fmt.Sprintf(
		"INSERT INTO %s(%s) VALUES (%s);",
		tblName,
		strings.Join(columns, ","),
		strings.Join(args, ","),
	), fields, nil
}

// InsertDB builds an insert func for T rows, binding columns from sql
// tags.
func InsertDB[T any](
	ctx context.Context, db *sql.DB, tblName string, fieldNames ...string,
) (func(v *T) (sql.Result, error), error) {
	if db == nil {
		return nil, errors.New("no database conn")
	}

	if tblName == "" {
		return nil, errors.New("no table name")
	}

	typ := reflect.TypeOf(*new(T))
	if typ.Kind() != reflect.Struct {
		return nil, errors.Errorf("%s is not a struct row", typ)
	}

	sqlTpl, fields, err := insertSQL(typ, tblName, fieldNames...)
	if err != nil {
		return nil, err
	}

	return func(v *T) (sql.Result, error) {
		value := reflect.ValueOf(v).Elem()

		argList := make([]any, 0, len(fields))
		for _, idx := range fields {
			argList = append(argList, value.Field(idx).Interface())
		}

		c, cancel := context.WithCancel(ctx)
		defer cancel()

		return db.ExecContext(c, sqlTpl, argList...)
	}, nil
}

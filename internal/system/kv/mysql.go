package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/novora/compliance-api/internal/system/config"
	"github.com/novora/compliance-api/internal/system/log"
)

// Named queries for the MySQL backend. Keys live in COMPLIANCE_RECORD, list
// structures in COMPLIANCE_LIST where descending SEQ gives head-first order.
const (
	queryUpsertRecord   = "INSERT INTO COMPLIANCE_RECORD (RECORD_KEY, RECORD_VALUE, UPDATED_TIME) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE RECORD_VALUE = VALUES(RECORD_VALUE), UPDATED_TIME = VALUES(UPDATED_TIME)"
	queryGetRecord      = "SELECT RECORD_VALUE FROM COMPLIANCE_RECORD WHERE RECORD_KEY = ?"
	queryDeleteRecord   = "DELETE FROM COMPLIANCE_RECORD WHERE RECORD_KEY = ?"
	queryListByPrefix   = "SELECT RECORD_VALUE FROM COMPLIANCE_RECORD WHERE RECORD_KEY LIKE ? ORDER BY RECORD_KEY"
	queryKeysByPrefix   = "SELECT RECORD_KEY FROM COMPLIANCE_RECORD WHERE RECORD_KEY LIKE ? ORDER BY RECORD_KEY"
	queryDeleteByPrefix = "DELETE FROM COMPLIANCE_RECORD WHERE RECORD_KEY LIKE ?"
	queryPushListEntry  = "INSERT INTO COMPLIANCE_LIST (LIST_KEY, RECORD_VALUE, CREATED_TIME) VALUES (?, ?, ?)"
	queryRangeList      = "SELECT RECORD_VALUE FROM COMPLIANCE_LIST WHERE LIST_KEY = ? ORDER BY SEQ DESC LIMIT ? OFFSET ?"
	queryTrimList       = "DELETE FROM COMPLIANCE_LIST WHERE LIST_KEY = ? AND SEQ NOT IN (SELECT SEQ FROM (SELECT SEQ FROM COMPLIANCE_LIST WHERE LIST_KEY = ? ORDER BY SEQ DESC LIMIT ?) keep)"
	queryDeleteList     = "DELETE FROM COMPLIANCE_LIST WHERE LIST_KEY = ?"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS COMPLIANCE_RECORD (
		RECORD_KEY   VARCHAR(512) NOT NULL PRIMARY KEY,
		RECORD_VALUE MEDIUMBLOB   NOT NULL,
		UPDATED_TIME BIGINT       NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS COMPLIANCE_LIST (
		SEQ          BIGINT       NOT NULL AUTO_INCREMENT PRIMARY KEY,
		LIST_KEY     VARCHAR(512) NOT NULL,
		RECORD_VALUE MEDIUMBLOB   NOT NULL,
		CREATED_TIME BIGINT       NOT NULL,
		INDEX IDX_COMPLIANCE_LIST_KEY (LIST_KEY, SEQ)
	)`,
}

// mysqlStore implements Store on top of sqlx.
type mysqlStore struct {
	db *sqlx.DB
}

// NewMySQLStore opens the MySQL-backed store and ensures its schema exists.
func NewMySQLStore(cfg *config.MySQLStoreConfig) (Store, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "MySQLStore"))

	db, err := sqlx.Open("mysql", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &mysqlStore{db: db}
	if err := store.ensureSchema(ctx); err != nil {
		return nil, err
	}

	logger.Info("Successfully connected to database",
		log.String("hostname", cfg.Hostname),
		log.Int("port", cfg.Port),
		log.String("database", cfg.Database))

	return store, nil
}

// NewMySQLStoreFromDB wraps an existing connection, used by tests with sqlmock.
func NewMySQLStoreFromDB(db *sqlx.DB) Store {
	return &mysqlStore{db: db}
}

func (s *mysqlStore) ensureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func (s *mysqlStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.GetContext(ctx, &value, queryGetRecord, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *mysqlStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, queryUpsertRecord, key, value, time.Now().UnixMilli())
	return err
}

func (s *mysqlStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, queryDeleteRecord, key)
	return err
}

func (s *mysqlStore) List(ctx context.Context, prefix string) ([][]byte, error) {
	rows, err := s.db.QueryxContext(ctx, queryListByPrefix, escapeLikePrefix(prefix)+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values [][]byte
	for rows.Next() {
		var value []byte
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, rows.Err()
}

func (s *mysqlStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	if err := s.db.SelectContext(ctx, &keys, queryKeysByPrefix, escapeLikePrefix(prefix)+"%"); err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *mysqlStore) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) {
	result, err := s.db.ExecContext(ctx, queryDeleteByPrefix, escapeLikePrefix(prefix)+"%")
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (s *mysqlStore) Push(ctx context.Context, listKey string, value []byte) error {
	_, err := s.db.ExecContext(ctx, queryPushListEntry, listKey, value, time.Now().UnixMilli())
	return err
}

func (s *mysqlStore) Range(ctx context.Context, listKey string, start, stop int64) ([][]byte, error) {
	// Translate Redis-style inclusive range onto LIMIT/OFFSET. A stop of -1
	// means the tail of the list.
	limit := int64(-1)
	if stop >= 0 {
		limit = stop - start + 1
		if limit <= 0 {
			return nil, nil
		}
	}
	query := queryRangeList
	args := []interface{}{listKey, limit, start}
	if limit < 0 {
		query = strings.Replace(queryRangeList, "LIMIT ? OFFSET ?", "LIMIT 18446744073709551615 OFFSET ?", 1)
		args = []interface{}{listKey, start}
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values [][]byte
	for rows.Next() {
		var value []byte
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, rows.Err()
}

func (s *mysqlStore) Trim(ctx context.Context, listKey string, max int64) error {
	if max <= 0 {
		_, err := s.db.ExecContext(ctx, queryDeleteList, listKey)
		return err
	}
	_, err := s.db.ExecContext(ctx, queryTrimList, listKey, listKey, max)
	return err
}

func (s *mysqlStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *mysqlStore) Close() error {
	return s.db.Close()
}

// escapeLikePrefix escapes LIKE wildcards so stored keys containing % or _
// cannot widen a prefix match.
func escapeLikePrefix(prefix string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(prefix)
}

package feed

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"finance-bot/internal/market"
)

// barCache 在 SQLite 中缓存最近一次拉取的K线，避免重复请求交易所。
type barCache struct {
	db  *sql.DB
	ttl time.Duration
}

func newBarCache(db *sql.DB, ttl time.Duration) (*barCache, error) {
	c := &barCache{db: db, ttl: ttl}
	if err := c.initSchema(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *barCache) initSchema() error {
	stmt := `
CREATE TABLE IF NOT EXISTS bar_cache (
	symbol TEXT NOT NULL,
	timeframe TEXT NOT NULL,
	ts INTEGER NOT NULL,
	open REAL NOT NULL,
	high REAL NOT NULL,
	low REAL NOT NULL,
	close REAL NOT NULL,
	volume REAL NOT NULL,
	fetched_at TEXT NOT NULL,
	PRIMARY KEY (symbol, timeframe, ts)
);
`
	if _, err := c.db.Exec(stmt); err != nil {
		return fmt.Errorf("feed: 初始化K线缓存表失败: %w", err)
	}
	return nil
}

// load 返回缓存命中的K线。条数不足或超过TTL视为未命中。
func (c *barCache) load(ctx context.Context, symbol, timeframe string, limit int) ([]market.Bar, bool, error) {
	if c.ttl <= 0 {
		return nil, false, nil
	}

	var (
		count     int
		fetchedAt sql.NullString
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*), MAX(fetched_at) FROM bar_cache WHERE symbol = ? AND timeframe = ?`,
		symbol, timeframe,
	).Scan(&count, &fetchedAt)
	if err != nil {
		return nil, false, fmt.Errorf("feed: 查询缓存元信息失败: %w", err)
	}

	if count < limit || !fetchedAt.Valid {
		return nil, false, nil
	}

	stamp, err := time.Parse(time.RFC3339, fetchedAt.String)
	if err != nil || time.Since(stamp) > c.ttl {
		return nil, false, nil
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT ts, open, high, low, close, volume FROM bar_cache
		 WHERE symbol = ? AND timeframe = ? ORDER BY ts DESC LIMIT ?`,
		symbol, timeframe, limit,
	)
	if err != nil {
		return nil, false, fmt.Errorf("feed: 读取缓存K线失败: %w", err)
	}
	defer rows.Close()

	bars := make([]market.Bar, 0, limit)
	for rows.Next() {
		var (
			ts  int64
			bar market.Bar
		)
		if scanErr := rows.Scan(&ts, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); scanErr != nil {
			return nil, false, fmt.Errorf("feed: 解析缓存K线失败: %w", scanErr)
		}
		bar.Timestamp = time.UnixMilli(ts).UTC()
		bars = append(bars, bar)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("feed: 遍历缓存K线失败: %w", err)
	}

	// 查询按时间倒序取最近N根，返回前翻转为升序。
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}

	return bars, true, nil
}

// save 以整批替换的方式写入缓存。
func (c *barCache) save(ctx context.Context, symbol, timeframe string, bars []market.Bar) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("feed: 开启缓存事务失败: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM bar_cache WHERE symbol = ? AND timeframe = ?`,
		symbol, timeframe,
	); err != nil {
		return fmt.Errorf("feed: 清理旧缓存失败: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO bar_cache (symbol, timeframe, ts, open, high, low, close, volume, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("feed: 准备缓存写入失败: %w", err)
	}
	defer stmt.Close()

	for _, bar := range bars {
		if _, err := stmt.ExecContext(ctx,
			symbol, timeframe, bar.Timestamp.UnixMilli(),
			bar.Open, bar.High, bar.Low, bar.Close, bar.Volume, now,
		); err != nil {
			return fmt.Errorf("feed: 写入缓存K线失败: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("feed: 提交缓存事务失败: %w", err)
	}
	return nil
}

package datarecording

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/tebeka/atexit"
)

// ClickHouseRecorder is a DataRecorder that batches rows and writes them
// to a ClickHouse server with bulk inserts. It only supports the table
// shapes this simulator records, which keeps the hot path free of
// reflection.
type ClickHouseRecorder struct {
	conn      clickhouse.Conn
	mu        sync.Mutex
	batchSize int

	transferBatch []TransferRecord
	runInfoBatch  []runInfo

	tables map[string]tableType

	entryCount int
}

type tableType int

const (
	tableTypeTransfer tableType = iota
	tableTypeRunInfo
)

// NewClickHouseRecorder creates a ClickHouseRecorder connected to the
// given server. A zero batchSize selects the default.
func NewClickHouseRecorder(
	host string,
	port int,
	database string,
	username string,
	password string,
	batchSize int,
) DataRecorder {
	if batchSize == 0 {
		batchSize = 100000
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", host, port)},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:      time.Second * 30,
		MaxOpenConns:     5,
		MaxIdleConns:     5,
		ConnMaxLifetime:  time.Hour,
		ConnOpenStrategy: clickhouse.ConnOpenInOrder,
		BlockBufferSize:  10,
	})
	if err != nil {
		panic(fmt.Errorf("failed to connect to ClickHouse: %w", err))
	}

	if err := conn.Ping(context.Background()); err != nil {
		panic(fmt.Errorf("failed to ping ClickHouse: %w", err))
	}

	recorder := &ClickHouseRecorder{
		conn:      conn,
		batchSize: batchSize,
		tables:    make(map[string]tableType),
	}

	atexit.Register(func() {
		recorder.Flush()
	})

	return recorder
}

// CreateTable creates a table with a schema matching the sample entry.
func (r *ClickHouseRecorder) CreateTable(tableName string, sampleEntry any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var createSQL string
	var tType tableType

	switch sampleEntry.(type) {
	case TransferRecord:
		tType = tableTypeTransfer
		createSQL = fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				ID String,
				OriginHost String,
				Src String,
				Dst String,
				SizeUnits Float64,
				DispatchTime Float64,
				Delay Float64,
				Kind String
			) ENGINE = MergeTree()
			ORDER BY (DispatchTime, ID)
		`, tableName)

	case runInfo:
		tType = tableTypeRunInfo
		createSQL = fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				Property String,
				Value String
			) ENGINE = MergeTree()
			ORDER BY Property
		`, tableName)

	default:
		panic(fmt.Sprintf("unknown table type: %T", sampleEntry))
	}

	err := r.conn.Exec(context.Background(), createSQL)
	if err != nil {
		panic(fmt.Errorf("failed to create table %s: %w", tableName, err))
	}

	r.tables[tableName] = tType
}

// InsertData buffers one entry for the given table.
func (r *ClickHouseRecorder) InsertData(tableName string, entry any) {
	r.mu.Lock()

	tType, exists := r.tables[tableName]
	if !exists {
		r.mu.Unlock()
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	switch tType {
	case tableTypeTransfer:
		e, ok := entry.(TransferRecord)
		if !ok {
			r.mu.Unlock()
			panic(fmt.Sprintf("invalid entry type for transfer table: %T",
				entry))
		}

		r.transferBatch = append(r.transferBatch, e)

	case tableTypeRunInfo:
		e, ok := entry.(runInfo)
		if !ok {
			r.mu.Unlock()
			panic(fmt.Sprintf("invalid entry type for run_info table: %T",
				entry))
		}

		r.runInfoBatch = append(r.runInfoBatch, e)
	}

	r.entryCount++

	if r.entryCount >= r.batchSize {
		r.mu.Unlock()
		r.Flush()
		return
	}

	r.mu.Unlock()
}

// ListTables returns all table names.
func (r *ClickHouseRecorder) ListTables() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	tables := make([]string, 0, len(r.tables))
	for name := range r.tables {
		tables = append(tables, name)
	}

	return tables
}

// Flush writes all batched rows with bulk inserts.
func (r *ClickHouseRecorder) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entryCount == 0 {
		return
	}

	ctx := context.Background()

	for tableName, tType := range r.tables {
		switch tType {
		case tableTypeTransfer:
			if len(r.transferBatch) > 0 {
				r.flushTransfers(ctx, tableName)
			}
		case tableTypeRunInfo:
			if len(r.runInfoBatch) > 0 {
				r.flushRunInfo(ctx, tableName)
			}
		}
	}

	r.entryCount = 0
}

func (r *ClickHouseRecorder) flushTransfers(
	ctx context.Context,
	tableName string,
) {
	batch, err := r.conn.PrepareBatch(
		ctx, fmt.Sprintf("INSERT INTO %s", tableName))
	if err != nil {
		panic(fmt.Errorf("failed to prepare batch for %s: %w", tableName, err))
	}

	for _, entry := range r.transferBatch {
		err = batch.Append(
			entry.ID,
			entry.OriginHost,
			entry.Src,
			entry.Dst,
			entry.SizeUnits,
			entry.DispatchTime,
			entry.Delay,
			entry.Kind,
		)
		if err != nil {
			panic(fmt.Errorf("failed to append to batch: %w", err))
		}
	}

	err = batch.Send()
	if err != nil {
		panic(fmt.Errorf("failed to send batch: %w", err))
	}

	r.transferBatch = r.transferBatch[:0]
}

func (r *ClickHouseRecorder) flushRunInfo(
	ctx context.Context,
	tableName string,
) {
	batch, err := r.conn.PrepareBatch(
		ctx, fmt.Sprintf("INSERT INTO %s", tableName))
	if err != nil {
		panic(fmt.Errorf("failed to prepare batch for %s: %w", tableName, err))
	}

	for _, entry := range r.runInfoBatch {
		err = batch.Append(entry.Property, entry.Value)
		if err != nil {
			panic(fmt.Errorf("failed to append to batch: %w", err))
		}
	}

	err = batch.Send()
	if err != nil {
		panic(fmt.Errorf("failed to send batch: %w", err))
	}

	r.runInfoBatch = r.runInfoBatch[:0]
}

// Close flushes remaining data and closes the connection.
func (r *ClickHouseRecorder) Close() error {
	r.Flush()

	err := r.conn.Close()
	if err != nil {
		return fmt.Errorf("failed to close ClickHouse connection: %w", err)
	}

	return nil
}

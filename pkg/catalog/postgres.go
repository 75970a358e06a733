package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/preedep/appinterfaceviewer/pkg/model"
)

// Querier is the part of pgxpool.Pool the catalog needs; pgxmock pools
// satisfy it as well.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const (
	sqlApplications = `
		SELECT a.app_id, a.app_name, a.app_level, c.category_id, c.category_name
		FROM app_info a
		JOIN app_category c ON c.category_id = a.category_id
		ORDER BY a.app_id`

	sqlConnections = `
		SELECT ci.connect_id, ci.app_start_id, ci.app_end_id,
		       t.com_method_type_id, t.com_method_name, i.com_method_id,
		       COALESCE(i.kafka_topic, ''), COALESCE(i.rest_api_http_method, ''),
		       COALESCE(i.rest_api_http_uri, ''), COALESCE(i.mq_queue, ''),
		       COALESCE(i.grpc_service, ''), COALESCE(i.file_path, ''),
		       COALESCE(i.wsdl_url, '')
		FROM app_connect_info ci
		JOIN com_method_type t ON t.com_method_type_id = ci.com_method_type_id
		JOIN com_method_info i ON i.com_method_id = ci.com_method_id
		ORDER BY ci.connect_id`

	sqlRoutes = `
		SELECT connect_id, route_name
		FROM app_connect_route
		ORDER BY connect_id, route_name`
)

// PostgresSource reads the catalog tables from PostgreSQL
type PostgresSource struct {
	db Querier
}

// NewPostgresSource creates a source reading through db
func NewPostgresSource(db Querier) *PostgresSource {
	return &PostgresSource{db: db}
}

// OpenPool connects to the catalog database and verifies the connection
func OpenPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// The catalog is read in a handful of queries per load
	config.MaxConns = 4
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	return pool, nil
}

// Name implements Source
func (s *PostgresSource) Name() string {
	return "postgres"
}

// Load implements Source
func (s *PostgresSource) Load(ctx context.Context) (*model.Graph, error) {
	c, err := s.Read(ctx)
	if err != nil {
		return nil, err
	}
	return Build(c)
}

// Read fetches the catalog records without building a graph
func (s *PostgresSource) Read(ctx context.Context) (*Catalog, error) {
	apps, err := s.applications(ctx)
	if err != nil {
		return nil, err
	}

	conns, order, err := s.connections(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.routes(ctx, conns); err != nil {
		return nil, err
	}

	c := &Catalog{
		Applications: apps,
		Connections:  make([]Connection, 0, len(order)),
	}
	for _, id := range order {
		c.Connections = append(c.Connections, *conns[id])
	}
	return c, nil
}

func (s *PostgresSource) applications(ctx context.Context) ([]AppInfo, error) {
	rows, err := s.db.Query(ctx, sqlApplications)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	apps := make([]AppInfo, 0)
	for rows.Next() {
		var (
			app   AppInfo
			level int16
		)
		if err := rows.Scan(&app.AppID, &app.Name, &level, &app.Category.ID, &app.Category.Name); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		app.Level = uint8(level)
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read applications: %w", err)
	}
	return apps, nil
}

func (s *PostgresSource) connections(ctx context.Context) (map[int64]*Connection, []int64, error) {
	rows, err := s.db.Query(ctx, sqlConnections)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query connections: %w", err)
	}
	defer rows.Close()

	conns := make(map[int64]*Connection)
	var order []int64
	for rows.Next() {
		var (
			id   int64
			conn Connection
			info = &conn.MethodInfo
		)
		err := rows.Scan(&id, &conn.Start.AppID, &conn.End.AppID,
			&conn.MethodType.ID, &conn.MethodType.Name, &info.ID,
			&info.KafkaTopic, &info.RESTMethod, &info.RESTEndpoint, &info.MQQueue,
			&info.GRPCService, &info.FilePath, &info.WSDLURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		conns[id] = &conn
		order = append(order, id)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read connections: %w", err)
	}
	return conns, order, nil
}

func (s *PostgresSource) routes(ctx context.Context, conns map[int64]*Connection) error {
	rows, err := s.db.Query(ctx, sqlRoutes)
	if err != nil {
		return fmt.Errorf("failed to query routes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return fmt.Errorf("failed to scan route: %w", err)
		}
		if conn, ok := conns[id]; ok {
			conn.RouteNames = append(conn.RouteNames, name)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read routes: %w", err)
	}
	return nil
}

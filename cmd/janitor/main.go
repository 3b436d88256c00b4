package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/jackc/pgx/v5/pgxpool"
)

// janitor: corre como lambda programada y poda lo que ya no le sirve a
// nadie. Los timers despachados y su archivo se retienen una semana para
// debug; los scrims cancelados y las practicas viejas, un mes.
func handler(ctx context.Context) (string, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return "no DATABASE_URL", nil
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Sprintf("parse: %v", err), nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Sprintf("pool: %v", err), nil
	}
	defer pool.Close()

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, _ = pool.Exec(cctx, `DELETE FROM timers WHERE dispatched AND expires_at < now() - INTERVAL '7 days';`)
	_, _ = pool.Exec(cctx, `DELETE FROM timer_archive WHERE archived_at < now() - INTERVAL '7 days';`)
	_, _ = pool.Exec(cctx, `DELETE FROM scrims WHERE status = 'cancelled' AND updated_at < now() - INTERVAL '30 days';`)
	_, _ = pool.Exec(cctx, `DELETE FROM practices WHERE status = 'completed' AND ended_at < now() - INTERVAL '30 days';`)
	_, _ = pool.Exec(cctx, `
DELETE FROM gamedays
WHERE status IN ('completed','cancelled')
  AND starts_at < now() - INTERVAL '90 days';`)

	return "ok", nil
}

func main() { lambda.Start(handler) }

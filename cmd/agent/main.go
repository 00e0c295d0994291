// Command agent runs replenishment decisions and inspects persisted orders
// from the terminal.
package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/inventory-agent/internal/action"
	"github.com/andresuchdata/inventory-agent/internal/cache"
	"github.com/andresuchdata/inventory-agent/internal/config"
	"github.com/andresuchdata/inventory-agent/internal/llm"
	"github.com/andresuchdata/inventory-agent/internal/supply"
	"github.com/andresuchdata/inventory-agent/internal/workflow"
	"github.com/andresuchdata/inventory-agent/pkg/logger"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "agent",
		Usage: "Run inventory replenishment decisions",
		Commands: []*cli.Command{
			{
				Name:  "decide",
				Usage: "Run a decision for one product and print the result",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "product",
						Usage:    "Product identifier",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Data source mode (mock)",
						Value: supply.ModeMock,
					},
				},
				Action: runDecide,
			},
			{
				Name:  "orders",
				Usage: "Inspect persisted orders",
				Subcommands: []*cli.Command{
					{
						Name:  "list",
						Usage: "List recent orders",
						Flags: []cli.Flag{
							newDBURLFlag(),
							&cli.StringFlag{
								Name:  "status",
								Usage: "Filter by status",
							},
							&cli.IntFlag{
								Name:  "limit",
								Usage: "Maximum rows to print",
								Value: 20,
							},
						},
						Action: runOrdersList,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runDecide(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel("release")

	registry := llm.NewRegistry(cfg.LLM)
	client := llm.NewClient(registry, cfg.LLM)
	builder := action.NewBuilder(cfg.LLM.DefaultUnitPrice)
	supplier := supply.NewMockSupplier(cfg.App.DataDir, cache.NewNoopSupplyCache())
	wf := workflow.New(supplier, client, builder, cfg.LLM.ConfidenceThreshold)

	result := wf.Decide(c.Context, c.String("product"), c.String("mode"))

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Println(string(out))

	if !result.OK() {
		return cli.Exit("", 1)
	}
	return nil
}

func runOrdersList(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(c.Context); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	query := `SELECT order_id, product_id, action, quantity, confidence, status, created_at
	          FROM orders`
	args := []any{}
	if status := c.String("status"); status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d", c.Int("limit"))

	rows, err := db.QueryContext(c.Context, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tPRODUCT\tACTION\tQTY\tCONF\tSTATUS\tCREATED")
	for rows.Next() {
		var (
			orderID, productID, actionName, status string
			quantity, confidence                   float64
			createdAt                              sql.NullTime
		)
		if err := rows.Scan(&orderID, &productID, &actionName, &quantity, &confidence, &status, &createdAt); err != nil {
			return fmt.Errorf("failed to scan order row: %w", err)
		}
		created := ""
		if createdAt.Valid {
			created = createdAt.Time.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0f\t%.2f\t%s\t%s\n",
			orderID, productID, actionName, quantity, confidence, status, created)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate order rows: %w", err)
	}

	return w.Flush()
}

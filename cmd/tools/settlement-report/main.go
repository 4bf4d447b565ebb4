// Ferramenta de linha de comando: imprime um resumo das liquidações por
// usuário direto do Postgres. Uso operacional, sem dependência dos serviços.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/radieske/cs2-bet-platform/internal/shared/config"
	"github.com/radieske/cs2-bet-platform/internal/shared/db"
)

func main() {
	since := flag.Duration("since", 7*24*time.Hour, "janela do relatório (ex: 24h, 168h)")
	flag.Parse()

	cfg := config.Load("settlement-report")
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pg connect:", err)
		os.Exit(1)
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rows, err := pg.QueryContext(ctx, `
		SELECT user_id,
			COUNT(*) FILTER (WHERE status='WON')  AS won,
			COUNT(*) FILTER (WHERE status='LOST') AS lost,
			COUNT(*) FILTER (WHERE status='VOID') AS voided,
			COALESCE(SUM(stake_credits), 0) AS staked,
			COALESCE(SUM(potential_payout) FILTER (WHERE status='WON'), 0)
				+ COALESCE(SUM(stake_credits) FILTER (WHERE status='VOID'), 0) AS returned
		FROM bets
		WHERE status <> 'PENDING' AND settled_at >= NOW() - $1::interval
		GROUP BY user_id
		ORDER BY returned - staked DESC`,
		fmt.Sprintf("%d seconds", int64(since.Seconds())))
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	defer rows.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("User", "Won", "Lost", "Void", "Staked", "Returned", "Net")

	var totalStaked, totalReturned int64
	for rows.Next() {
		var userID string
		var won, lost, voided int
		var staked, returned int64
		if err := rows.Scan(&userID, &won, &lost, &voided, &staked, &returned); err != nil {
			fmt.Fprintln(os.Stderr, "scan:", err)
			os.Exit(1)
		}
		table.Append(
			userID,
			fmt.Sprintf("%d", won),
			fmt.Sprintf("%d", lost),
			fmt.Sprintf("%d", voided),
			fmt.Sprintf("%d", staked),
			fmt.Sprintf("%d", returned),
			fmt.Sprintf("%+d", returned-staked),
		)
		totalStaked += staked
		totalReturned += returned
	}
	if err := rows.Err(); err != nil {
		fmt.Fprintln(os.Stderr, "rows:", err)
		os.Exit(1)
	}

	fmt.Printf("Liquidações das últimas %s\n", *since)
	_ = table.Render()
	fmt.Printf("Total apostado: %d | Total devolvido: %d | Margem da casa: %+d\n",
		totalStaked, totalReturned, totalStaked-totalReturned)
}

package cmd

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"seatview/model"
	"seatview/service"
)

var watchFlag bool

var seatsCmd = &cobra.Command{
	Use:   "seats",
	Short: "Print every seat and its status",
	Long:  `Fetches the seat list once and prints it as a table. With --watch the table is printed again on every poll until interrupted.`,
	Args:  cobra.NoArgs,
	RunE:  runSeats,
}

func init() {
	seatsCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "keep polling and re-print the table")
}

func runSeats(cmd *cobra.Command, args []string) error {
	log.SetOutput(os.Stderr)
	client := service.NewClient(cfg.Servers[0], &http.Client{Timeout: cfg.Timeout})
	out := cmd.OutOrStdout()

	if !watchFlag {
		seats, err := client.GetSeats(cmd.Context())
		if err != nil {
			return err
		}
		renderSeatTable(out, client.BaseURL(), seats, time.Now())
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	poller := service.NewPoller(client, cfg.Interval)
	defer poller.Stop()
	results := poller.Start(ctx)

	var applied uint64
	for {
		select {
		case <-ctx.Done():
			return nil
		case res, ok := <-results:
			if !ok {
				return nil
			}
			if res.Seq <= applied {
				continue
			}
			applied = res.Seq
			if res.Err != nil {
				log.Printf("poll %s: %v", client.BaseURL(), res.Err)
				continue
			}
			renderSeatTable(out, client.BaseURL(), res.Seats, res.At)
		}
	}
}

func renderSeatTable(out io.Writer, server string, seats model.Seats, at time.Time) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle("%s • %s", server, at.Format(time.TimeOnly))
	t.AppendHeader(table.Row{"Seat", "Status", "Bookable", "Held By"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMax: 20},
		{Number: 4, WidthMax: 24},
	})

	for _, seat := range seats {
		bookable := ""
		if seat.Bookable() {
			bookable = "yes"
		}
		heldBy := seat.HeldBy
		if heldBy != "" && seat.HoldExpiresIn > 0 {
			heldBy = fmt.Sprintf("%s (%ds)", heldBy, seat.HoldExpiresIn)
		}
		t.AppendRow(table.Row{seat.Id, seat.Label, bookable, heldBy})
	}
	t.AppendFooter(table.Row{
		fmt.Sprintf("%d seats", len(seats)),
		fmt.Sprintf("%d available", seats.Count(model.StatusAvailable)),
		"",
		"",
	})
	t.Render()
}

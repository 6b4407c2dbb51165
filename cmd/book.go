package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"seatview/model"
	"seatview/service"
)

var bookCmd = &cobra.Command{
	Use:   "book [seat-id]",
	Short: "Book a seat",
	Long:  `Books the given seat and prints the server's answer. Without a seat id, prompts with the seats that are currently available.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBook,
}

func runBook(cmd *cobra.Command, args []string) error {
	log.SetOutput(os.Stderr)
	client := service.NewClient(cfg.Servers[0], &http.Client{Timeout: cfg.Timeout})
	ctx := cmd.Context()

	seatID := ""
	if len(args) == 1 {
		seatID = args[0]
	} else {
		picked, err := promptSeat(ctx, client)
		if err != nil {
			return err
		}
		seatID = picked
	}

	result, err := client.BookSeat(ctx, seatID)
	fmt.Fprintln(cmd.OutOrStdout(), service.BookingMessage(result, err))
	if err != nil {
		log.Printf("book seat %s on %s: %v", seatID, client.BaseURL(), err)
		return errReported
	}
	return nil
}

func promptSeat(ctx context.Context, client *service.Client) (string, error) {
	seats, err := client.GetSeats(ctx)
	if err != nil {
		return "", err
	}
	bookable := seats.Bookable()
	if len(bookable) == 0 {
		return "", errors.New("no available seats")
	}

	prompt := promptui.Select{
		Label: "Select Seat",
		Items: seatIDs(bookable),
		Size:  10,
	}
	_, seatID, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("select seat: %w", err)
	}
	return seatID, nil
}

func seatIDs(seats model.Seats) []string {
	ids := make([]string, 0, len(seats))
	for _, seat := range seats {
		ids = append(ids, seat.Id)
	}
	return ids
}

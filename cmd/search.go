package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ptcgtools/rk9-crawler/internal/storage/postgres"
)

func newSearchCmd() *cobra.Command {
	var (
		country  string
		division string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "search <name>",
		Short: "Searches persisted players by name",
		Args:  cobra.MinimumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			results, err := store.SearchPlayers(cmd.Context(), postgres.SearchOptions{
				Name:     strings.Join(args, " "),
				Country:  country,
				Division: division,
				Limit:    limit,
			})
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Println("no players found")
				return nil
			}
			for _, p := range results {
				fmt.Printf("%-8d %-10s %-24s %-4s %d participations\n",
					p.ID, p.MaskedID, p.FirstName+" "+p.LastName, p.Country, p.ParticipationCount)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&country, "country", "", "two-letter country filter (exact)")
	cmd.Flags().StringVar(&division, "division", "", "only players who played this division")
	cmd.Flags().IntVar(&limit, "limit", 0, "max results (default 100, cap 500)")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <player-id>",
		Short: "Lists a player's participations, most recent event first",
		Args:  cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			playerID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid player id %q", args[0])
			}

			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			details, err := store.ListParticipations(cmd.Context(), playerID)
			if err != nil {
				return err
			}

			if len(details) == 0 {
				fmt.Println("no participations found")
				return nil
			}
			for _, d := range details {
				standing := "-"
				if d.Standing != nil {
					standing = strconv.Itoa(*d.Standing)
				}
				division := "-"
				if d.Division != nil {
					division = *d.Division
				}
				fmt.Printf("%-40s %-24s %-10s standing %s\n",
					d.EventName, d.EventDateText, division, standing)
			}
			return nil
		},
	}
}

func openStore(cmd *cobra.Command) (*postgres.Store, error) {
	store, err := postgres.New(cmd.Context(), postgres.Config{
		DSN:      cfg.DB.DSN,
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return store, nil
}

package main

import (
	"contact-lab/internal"
	"contact-lab/repositories"
	"contact-lab/search"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	dbPath    string
	indexPath string
}

// paths falls back to the shared configuration for paths not given as flags.
func (o *options) paths() error {
	if o.dbPath != "" && o.indexPath != "" {
		return nil
	}
	config, err := internal.LoadConfig[internal.Config]()
	if err != nil {
		return err
	}
	o.dbPath = lo.CoalesceOrEmpty(o.dbPath, config.BadgerFilepath)
	o.indexPath = lo.CoalesceOrEmpty(o.indexPath, config.BlugeFilepath)
	return nil
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:           "mcl-inspect",
		Short:         "Dump the stored meta contact list",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Path to badger DB (default $BADGER_FILEPATH)")
	rootCmd.PersistentFlags().StringVar(&opts.indexPath, "index", "", "Path to bluge index (default $BLUGE_FILEPATH)")
	rootCmd.AddCommand(
		newGroupsCmd(opts),
		newContactsCmd(opts),
		newSearchCmd(opts),
	)
	return rootCmd
}

func newGroupsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List stored group rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRepository(opts, func(repository repositories.ContactListRepository) error {
				rows, err := repository.AllGroups()
				if err != nil {
					return err
				}
				renderGroups(cmd.OutOrStdout(), rows)
				return nil
			})
		},
	}
}

func newContactsCmd(opts *options) *cobra.Command {
	var accountID string
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "List stored contact rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRepository(opts, func(repository repositories.ContactListRepository) error {
				var rows []repositories.ContactRow
				var err error
				if accountID == "" {
					rows, err = repository.AllContacts()
				} else {
					rows, err = repository.GetContacts(accountID)
				}
				if err != nil {
					return err
				}
				renderContacts(cmd.OutOrStdout(), rows)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&accountID, "account", "", "Only rows of this account")
	return cmd
}

func newSearchCmd(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Find meta contacts by name, address or detail",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.paths(); err != nil {
				return err
			}
			reader, err := bluge.OpenReader(bluge.DefaultConfig(opts.indexPath))
			if err != nil {
				return fmt.Errorf("unable to open index %s: %w", opts.indexPath, err)
			}
			defer func() { _ = reader.Close() }()

			ids, err := search.SearchReader(cmd.Context(), reader, strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			return withRepository(opts, func(repository repositories.ContactListRepository) error {
				var rows []repositories.ContactRow
				for _, id := range ids {
					found, err := repository.GetMetaContactRows(id)
					if err != nil {
						return err
					}
					rows = append(rows, found...)
				}
				renderContacts(cmd.OutOrStdout(), rows)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", search.DefaultLimit, "Maximum number of meta contacts")
	return cmd
}

func withRepository(opts *options, fn func(repository repositories.ContactListRepository) error) error {
	if err := opts.paths(); err != nil {
		return err
	}
	db, err := badger.Open(badger.DefaultOptions(opts.dbPath).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true))
	if err != nil {
		return fmt.Errorf("error while opening Badger: %w", err)
	}
	defer func() { _ = db.Close() }()
	return fn(repositories.NewContactListRepository(db, slog.Default()))
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func renderGroups(w io.Writer, rows []repositories.GroupRow) {
	table := newTable(w, []string{"Group ID", "Name", "Parent", "Account", "Proto UID", "Parent UID"})
	for _, row := range rows {
		table.Append([]string{
			shortID(row.GroupID),
			row.GroupName,
			shortID(row.ParentGroupID),
			row.AccountID,
			row.ProtoGroupUID,
			row.ParentProtoGroupUID,
		})
	}
	table.Render()
}

func renderContacts(w io.Writer, rows []repositories.ContactRow) {
	table := newTable(w, []string{"Meta contact", "Display name", "Group", "Account", "Address", "Details"})
	for _, row := range rows {
		name := row.DisplayName
		if row.UserDefined {
			name += " *"
		}
		table.Append([]string{
			shortID(row.MetaContactID),
			name,
			shortID(row.MetaGroupID),
			row.AccountID,
			row.Address,
			formatDetails(row.Details),
		})
	}
	table.Render()
}

func formatDetails(details map[string][]string) string {
	keys := lo.Keys(details)
	sort.Strings(keys)
	return strings.Join(lo.Map(keys, func(k string, _ int) string {
		return k + "=" + strings.Join(details[k], "|")
	}), " ")
}

// shortID keeps the first 8 characters of ids for readability.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/entkit/entkit"
)

var (
	listPage    int
	listLimit   int
	listSearch  string
	listSort    string
	listFilters []string
	outputJSON  bool
)

var describeCmd = &cobra.Command{
	Use:   "describe <entity>",
	Short: "Show an entity's resolved configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := engine.OpenSession(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(session.Config())
	},
}

var listCmd = &cobra.Command{
	Use:   "list <entity>",
	Short: "List an entity's records",
	Long: `List fetches one page of an entity's records.

Example:
  entctl list users
  entctl list users --page 2 --limit 50
  entctl list users --search ada --sort name:desc
  entctl list users --filter status=active --filter role=admin`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().IntVar(&listPage, "page", 1, "page number")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "page size (0 = entity default)")
	listCmd.Flags().StringVar(&listSearch, "search", "", "free-text search")
	listCmd.Flags().StringVar(&listSort, "sort", "", "sort as field or field:desc")
	listCmd.Flags().StringArrayVar(&listFilters, "filter", nil, "filter as key=value, repeatable")
	listCmd.Flags().BoolVar(&outputJSON, "json", false, "output as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	session, err := engine.OpenSession(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	state := session.State()
	if listLimit > 0 {
		state.SetLimit(listLimit)
	}
	if listSearch != "" {
		state.SetSearch(listSearch)
	}
	if listSort != "" {
		field, direction := parseSort(listSort)
		state.SetSorting(field, direction)
	}
	for _, raw := range listFilters {
		key, value, ok := strings.Cut(raw, "=")
		if !ok {
			return fmt.Errorf("invalid filter %q: want key=value", raw)
		}
		state.SetFilter(key, value)
	}
	state.SetPage(listPage)

	result, err := session.Load(cmd.Context())
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(result)
	}
	printTable(session.Config(), result)
	p := state.Pagination()
	fmt.Printf("\npage %d of %d, %d total\n", p.Page, p.TotalPages, p.Total)
	return nil
}

var getCmd = &cobra.Command{
	Use:   "get <entity> <id>",
	Short: "Fetch one record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := engine.OpenSession(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		record, err := session.Get(cmd.Context(), args[1])
		if err != nil {
			return err
		}
		return printJSON(record)
	},
}

var createCmd = &cobra.Command{
	Use:   "create <entity> <json|->",
	Short: "Create a record from a JSON payload",
	Long: `Create validates the payload against the entity's field rules and
submits it. Pass "-" to read the payload from stdin.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := engine.OpenSession(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		record, err := readPayload(args[1])
		if err != nil {
			return err
		}
		if errs := session.Validate(record); len(errs) > 0 {
			return validationFailure(errs)
		}
		created, err := session.Create(cmd.Context(), record)
		if err != nil {
			return err
		}
		return printJSON(created)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <entity> <id> <json|->",
	Short: "Update a record from a JSON payload",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := engine.OpenSession(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		record, err := readPayload(args[2])
		if err != nil {
			return err
		}
		if errs := session.Validate(record); len(errs) > 0 {
			return validationFailure(errs)
		}
		updated, err := session.Update(cmd.Context(), args[1], record)
		if err != nil {
			return err
		}
		return printJSON(updated)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <entity> <id>",
	Short: "Delete a record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := engine.OpenSession(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		deleted, err := session.Delete(cmd.Context(), args[1])
		if err != nil {
			return err
		}
		if !deleted {
			fmt.Println("deletion declined")
			return nil
		}
		fmt.Println("deleted")
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <entity> <json|->",
	Short: "Check a payload against an entity's field rules",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := engine.OpenSession(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		record, err := readPayload(args[1])
		if err != nil {
			return err
		}
		if errs := session.Validate(record); len(errs) > 0 {
			return validationFailure(errs)
		}
		fmt.Println("valid")
		return nil
	},
}

// =====================================
// Output Helpers
// =====================================

func parseSort(raw string) (string, entkit.SortDirection) {
	field, dir, ok := strings.Cut(raw, ":")
	if ok && strings.EqualFold(dir, "desc") {
		return field, entkit.SortDesc
	}
	return field, entkit.SortAsc
}

func readPayload(arg string) (entkit.Record, error) {
	data := []byte(arg)
	if arg == "-" {
		var err error
		data, err = readAllStdin()
		if err != nil {
			return nil, err
		}
	}
	var record entkit.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parse payload: %w", err)
	}
	return record, nil
}

func readAllStdin() ([]byte, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return data, nil
}

func validationFailure(errs map[string]string) error {
	keys := make([]string, 0, len(errs))
	for key := range errs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("validation failed:\n")
	for _, key := range keys {
		fmt.Fprintf(&b, "  %s: %s\n", key, errs[key])
	}
	return fmt.Errorf("%s", strings.TrimRight(b.String(), "\n"))
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// printTable renders the page through the entity's column descriptors.
func printTable(config entkit.EntityConfiguration, result entkit.ListResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	headers := make([]string, 0, len(config.Columns))
	for _, column := range config.Columns {
		headers = append(headers, column.Header)
	}
	fmt.Fprintln(w, strings.Join(headers, "\t"))

	for _, record := range result.Data {
		cells := make([]string, 0, len(config.Columns))
		for _, column := range config.Columns {
			value := record[column.AccessorKey]
			if column.Renderer != nil {
				cells = append(cells, column.Renderer(value, record))
				continue
			}
			if value == nil {
				cells = append(cells, "")
				continue
			}
			cells = append(cells, fmt.Sprintf("%v", value))
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()
}

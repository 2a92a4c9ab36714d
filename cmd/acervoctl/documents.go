package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"acervo/pkg/client"
	"acervo/pkg/debounce"
	"acervo/pkg/filter"
	"acervo/pkg/validate"
)

func snapshotFromFlags(cmd *cobra.Command) filter.Snapshot {
	query, _ := cmd.Flags().GetString("query")
	docType, _ := cmd.Flags().GetString("type")
	area, _ := cmd.Flags().GetString("area")
	author, _ := cmd.Flags().GetString("author")
	page, _ := cmd.Flags().GetInt("page")

	snap := filter.Default()
	snap.Query = query
	snap.DocumentType = docType
	snap.ResearchArea = area
	snap.Author = author
	if page > 1 {
		snap.Page = page
	}
	return snap
}

var searchCmd = &cobra.Command{
	Use:   "search [consulta]",
	Short: "List and search documents",
	Long: `Search lists repository documents, narrowed by free text and the
type, area and author filters. With --watch the command keeps reading
queries from stdin, debouncing keystrokes and refreshing results as you
type (one line per query, empty line to reset, Ctrl-D to leave).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := snapshotFromFlags(cmd)
		if len(args) == 1 {
			snap.Query = args[0]
			snap.Page = 1
		}

		cache := newCache()

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			return watchSearch(cmd, cache, snap)
		}

		page, err := cache.Documents(cmd.Context(), snap)
		if err != nil {
			return err
		}
		return printDocumentPage(page, snap.Page)
	},
}

// watchSearch runs the interactive loop: stdin lines feed the searcher,
// results print as each query settles.
func watchSearch(cmd *cobra.Command, cache *client.Cache, initial filter.Snapshot) error {
	s := client.NewSearcher(cache, debounce.DefaultDelay)
	s.Update(filter.Patch{
		Query:        filter.String(initial.Query),
		DocumentType: filter.String(initial.DocumentType),
		ResearchArea: filter.String(initial.ResearchArea),
		Author:       filter.String(initial.Author),
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go s.Run(ctx)

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				s.Reset()
				continue
			}
			s.Update(filter.Patch{Query: filter.String(line)})
		}
		cancel()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case res := <-s.Results():
			if res.Err != nil {
				fmt.Fprintln(os.Stderr, "busca falhou:", res.Err)
				continue
			}
			fmt.Printf("\n> %q\n", res.Snapshot.Query)
			if err := printDocumentPage(res.Page, res.Snapshot.Page); err != nil {
				return err
			}
		}
	}
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := newCache().Document(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printDocument(doc)
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download <id>",
	Short: "Download a document's file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		path, err := newClient().Download(cmd.Context(), args[0], dir)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload <arquivo>",
	Short: "Upload a new document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")
		authors, _ := cmd.Flags().GetStringSlice("authors")
		keywords, _ := cmd.Flags().GetStringSlice("keywords")
		docType, _ := cmd.Flags().GetString("type")
		area, _ := cmd.Flags().GetString("area")
		pubDate, _ := cmd.Flags().GetString("date")

		doc, err := newCache().CreateDocument(cmd.Context(), client.DocumentUpload{
			Meta: validate.DocumentInput{
				Title:           title,
				Description:     description,
				Authors:         authors,
				Keywords:        keywords,
				DocumentType:    docType,
				ResearchArea:    area,
				PublicationDate: pubDate,
			},
			Filename: filepath.Base(args[0]),
			Content:  f,
		})
		if err != nil {
			return err
		}
		fmt.Println("documento enviado:", doc.ID)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a document (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newCache().DeleteDocument(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("documento removido:", args[0])
		return nil
	},
}

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "Show the filterable facets and their counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := newCache().FilterStats(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput() {
			return printJSON(stats)
		}
		fmt.Printf("%d documentos\n\ntipos:\n", stats.TotalDocuments)
		for _, fc := range stats.DocumentTypes {
			fmt.Printf("  %-40s %d\n", fc.Name, fc.Count)
		}
		fmt.Println("\náreas:")
		for _, fc := range stats.ResearchAreas {
			fmt.Printf("  %-40s %d\n", fc.Name, fc.Count)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().String("query", "", "free-text search over title, description, authors and keywords")
	searchCmd.Flags().String("type", "", "filter by document type")
	searchCmd.Flags().String("area", "", "filter by research area")
	searchCmd.Flags().String("author", "", "filter by author name")
	searchCmd.Flags().Int("page", 1, "result page")
	searchCmd.Flags().Bool("watch", false, "interactive mode: read queries from stdin")

	downloadCmd.Flags().String("dir", ".", "destination directory")

	uploadCmd.Flags().String("title", "", "document title")
	uploadCmd.Flags().String("description", "", "document description")
	uploadCmd.Flags().StringSlice("authors", nil, "authors (repeat or comma-separate)")
	uploadCmd.Flags().StringSlice("keywords", nil, "keywords (repeat or comma-separate)")
	uploadCmd.Flags().String("type", "", "document type")
	uploadCmd.Flags().String("area", "", "research area")
	uploadCmd.Flags().String("date", "", "publication date (YYYY-MM-DD)")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(filtersCmd)
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/viper"

	"acervo/pkg/client"
	"acervo/pkg/model"
)

func jsonOutput() bool {
	return viper.GetBool("json")
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printDocumentPage(page *client.DocumentPage, current int) error {
	if jsonOutput() {
		return printJSON(page)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTÍTULO\tTIPO\tÁREA\tAUTORES")
	for _, d := range page.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			d.ID, d.Title, d.DocumentType, d.ResearchArea, strings.Join(d.Authors, "; "))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("página %d de %d (%d documentos)\n", current, page.Pages, page.Total)
	return nil
}

func printDocument(d *model.Document) error {
	if jsonOutput() {
		return printJSON(d)
	}
	fmt.Printf("ID:            %s\n", d.ID)
	fmt.Printf("Título:        %s\n", d.Title)
	fmt.Printf("Autores:       %s\n", strings.Join(d.Authors, "; "))
	fmt.Printf("Tipo:          %s\n", d.DocumentType)
	fmt.Printf("Área:          %s\n", d.ResearchArea)
	fmt.Printf("Palavras-chave: %s\n", strings.Join(d.Keywords, ", "))
	if d.PublicationDate != "" {
		fmt.Printf("Publicação:    %s\n", d.PublicationDate)
	}
	fmt.Printf("Visualizações: %d  Downloads: %d\n", d.ViewCount, d.DownloadCount)
	fmt.Printf("Enviado por:   %s <%s>\n", d.CreatedBy.Name, d.CreatedBy.Email)
	fmt.Println()
	fmt.Println(d.Description)
	return nil
}

func printUserPage(page *client.UserPage, current int) error {
	if jsonOutput() {
		return printJSON(page)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNOME\tEMAIL\tPAPEL\tDOCUMENTOS")
	for _, u := range page.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", u.ID, u.Name, u.Email, u.Role, u.DocumentCount)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("página %d de %d (%d contas)\n", current, page.Pages, page.Total)
	return nil
}

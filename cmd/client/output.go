package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/freshxpress/dashboard/internal/dashboard"
	"github.com/freshxpress/dashboard/internal/models"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	badStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
)

func mark(verified bool) string {
	if verified {
		return okStyle.Render("✓")
	}
	return badStyle.Render("✗")
}

func status(verified bool) string {
	if verified {
		return okStyle.Render(dashboard.StatusLabel(true))
	}
	return badStyle.Render(dashboard.StatusLabel(false))
}

func renderList(w io.Writer, page dashboard.Page) error {
	fmt.Fprintln(w, titleStyle.Render("Farmers List"))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCONTACT\tLOCATION\tVERIFIED")
	for _, f := range page.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			dashboard.ShortID(f.ID), f.FullName, f.ContactNumber.String(), f.State, mark(f.IsVerify))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(page.Items) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No farmers found."))
	}
	fmt.Fprintf(w, "Page %d of %d\n", page.Number, page.Total)
	return nil
}

func renderSection(tw *tabwriter.Writer, s dashboard.Section) {
	fmt.Fprintln(tw, headingStyle.Render(s.Title))
	for _, f := range s.Fields {
		fmt.Fprintf(tw, "  %s:\t%s\n", f.Label, f.Value)
	}
}

func renderDetail(w io.Writer, f *models.Farmer) error {
	v := dashboard.Present(f)
	fmt.Fprintln(w, titleStyle.Render(v.Name))
	fmt.Fprintf(w, "Farmer ID: %s\n", v.ID)
	fmt.Fprintf(w, "Verification Status: %s\n\n", status(f.IsVerify))

	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	renderSection(tw, v.Personal)
	renderSection(tw, v.Farm)
	crops := dashboard.Placeholder
	if len(v.Crops) > 0 {
		crops = strings.Join(v.Crops, ", ")
	}
	fmt.Fprintf(tw, "  Crops Grown:\t%s\n", crops)
	renderSection(tw, v.Location)
	if v.Map != nil {
		fmt.Fprintf(tw, "  Coordinates:\t%s, %s\n", dashboard.FormatCoord(v.Map.Lat), dashboard.FormatCoord(v.Map.Lng))
	}
	renderSection(tw, v.Additional)
	renderSection(tw, v.Banking)
	if v.DocumentURL != "" {
		fmt.Fprintln(tw, headingStyle.Render("Documents"))
		fmt.Fprintf(tw, "  Land Ownership Proof:\t%s\n", v.DocumentURL)
	}
	return tw.Flush()
}

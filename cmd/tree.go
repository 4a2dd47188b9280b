package main

import (
	"contact-lab/domain"
	"io"
	"slices"
	"strings"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

// printTree renders one line per meta contact, grouped by path.
func printTree(w io.Writer, root *domain.MetaContactGroup) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Group", "Contact", "Presence", "Addresses"})
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

	root.Walk(func(g *domain.MetaContactGroup) bool {
		path := groupPath(g)
		for _, mc := range g.Children() {
			addresses := lo.Map(mc.Contacts(), func(c domain.ProtoContact, _ int) string {
				return c.Address() + " (" + c.AccountID() + ")"
			})
			table.Append([]string{path, mc.DisplayName(), presence(mc), strings.Join(addresses, ", ")})
		}
		return true
	})
	table.Render()
}

func groupPath(g *domain.MetaContactGroup) string {
	var names []string
	for ; g != nil && !g.IsRoot(); g = g.Parent() {
		names = append(names, g.Name())
	}
	if len(names) == 0 {
		return "/"
	}
	slices.Reverse(names)
	return "/" + strings.Join(names, "/")
}

func presence(mc *domain.MetaContact) string {
	c := mc.DefaultContact()
	if c == nil {
		return "-"
	}
	status := c.PresenceStatus()
	switch {
	case status.Status >= domain.Online.Status:
		return color.FgGreen.Render(status.Name)
	case status.IsOnline():
		return color.FgYellow.Render(status.Name)
	default:
		return color.FgGray.Render(status.Name)
	}
}

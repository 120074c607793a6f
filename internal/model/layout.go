package model

// Layout is one of the four mutually exclusive ways a page of snips is shown.
type Layout string

const (
	// LayoutAccordionList shows a list of snips in an accordion.
	LayoutAccordionList Layout = "accordion_list"
	// LayoutNoSnip shows the empty state with a link to create a snip.
	LayoutNoSnip Layout = "no_snip"
	// LayoutSnipWithNav shows a single snip next to the other snips of its category.
	LayoutSnipWithNav Layout = "snip_with_nav"
	// LayoutFullSnip shows a single snip without navigation.
	LayoutFullSnip Layout = "full_snip"
)

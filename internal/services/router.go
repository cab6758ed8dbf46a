// Package services – command router
//
// The router classifies inbound text before any state logic runs. A matched
// top-level command always wins over an active session: entering a new
// command mid-flow discards the flow. Only when nothing matches does the text
// reach the conversation engine as scoped input for the current state.
package services

import (
	"strings"

	"golang.org/x/text/cases"
)

// RouteKind partitions inbound text into handling classes.
type RouteKind int

// Routing outcomes.
const (
	// RouteAdmin is an admin-only command (sender must be an admin identity).
	RouteAdmin RouteKind = iota
	// RouteSupport opens or continues the support sub-flow.
	RouteSupport
	// RouteCommand is a top-level user command from the closed list.
	RouteCommand
	// RouteScoped is free-form input for the active session state.
	RouteScoped
	// RouteIdle matched nothing and no session is active.
	RouteIdle
)

// Top-level command keywords (matched against trimmed, case-folded text).
const (
	CmdNewReceipt    = "new receipt"
	CmdEdit          = "edit"
	CmdResend        = "resend"
	CmdHistory       = "history"
	CmdStats         = "stats"
	CmdExport        = "export"
	CmdAddProduct    = "add product"
	CmdMyProducts    = "my products"
	CmdRemoveProduct = "remove product" // prefix: remove product <name>
	CmdSettings      = "settings"
	CmdRestore       = "restore" // prefix: restore <code>
	CmdCancel        = "cancel"
	CmdHelp          = "help"
	CmdSupport       = "support"
)

// Admin command keywords.
const (
	CmdTickets     = "tickets"
	CmdReply       = "reply" // prefix: reply <id> <text>
	CmdClose       = "close" // prefix: close <id>
	CmdBotSettings = "bot settings"
)

// exactCommands are top-level keywords matched whole.
var exactCommands = map[string]struct{}{
	CmdNewReceipt: {},
	CmdEdit:       {},
	CmdResend:     {},
	CmdHistory:    {},
	CmdStats:      {},
	CmdExport:     {},
	CmdAddProduct: {},
	CmdMyProducts: {},
	CmdSettings:   {},
	CmdCancel:     {},
	CmdHelp:       {},
}

// prefixCommands are parametrized keywords matched as "<keyword> <args>".
var prefixCommands = []string{
	CmdRemoveProduct,
	CmdRestore,
}

// adminPrefixCommands are parametrized admin keywords.
var adminPrefixCommands = []string{
	CmdReply,
	CmdClose,
}

// Route is the router's classification of one inbound message.
type Route struct {
	Kind    RouteKind
	Command string // keyword for RouteCommand / RouteAdmin
	Args    string // remainder after a prefix keyword, original casing, trimmed
}

// caseFolder normalizes text for keyword comparison independent of locale
// casing quirks.
var caseFolder = cases.Fold()

// Normalize prepares raw message text for comparisons: trim and case-fold.
func Normalize(text string) string {
	return caseFolder.String(strings.TrimSpace(text))
}

// Classify routes one inbound message. hasSession reports whether a
// conversation session is active for the sender; isAdmin whether the sender
// is an admin identity. Keyword matching is case-insensitive, but Args keeps
// the sender's original casing (ticket replies, backup codes).
func Classify(text string, hasSession, isAdmin bool) Route {
	raw := strings.TrimSpace(text)
	norm := caseFolder.String(raw)

	if isAdmin {
		switch norm {
		case CmdTickets, CmdBotSettings:
			return Route{Kind: RouteAdmin, Command: norm}
		}
		for _, p := range adminPrefixCommands {
			if args, ok := matchPrefix(norm, raw, p); ok {
				return Route{Kind: RouteAdmin, Command: p, Args: args}
			}
		}
	}

	if norm == CmdSupport {
		return Route{Kind: RouteSupport, Command: CmdSupport}
	}

	if _, ok := exactCommands[norm]; ok {
		return Route{Kind: RouteCommand, Command: norm}
	}
	for _, p := range prefixCommands {
		if args, ok := matchPrefix(norm, raw, p); ok {
			return Route{Kind: RouteCommand, Command: p, Args: args}
		}
	}

	if hasSession {
		return Route{Kind: RouteScoped}
	}
	return Route{Kind: RouteIdle}
}

// matchPrefix reports whether norm is "<keyword> <rest>" with non-empty rest.
// The returned args are sliced from raw: command keywords are ASCII, so the
// fold preserves byte offsets up to the args region.
func matchPrefix(norm, raw, keyword string) (args string, ok bool) {
	if !strings.HasPrefix(norm, keyword+" ") {
		return "", false
	}
	args = strings.TrimSpace(raw[len(keyword)+1:])
	return args, args != ""
}

// Package services – user-facing message text
//
// All fixed prompts and notices live here so flows stay readable. Randomized
// pools are in replies.go.
package services

const (
	msgHelp = "Here's what I can do:\n" +
		"• new receipt — bill a customer\n" +
		"• edit — change your latest receipt\n" +
		"• resend — resend your latest receipt\n" +
		"• history — your last 5 receipts\n" +
		"• stats — this month's numbers\n" +
		"• export — this month's receipts as a file\n" +
		"• add product / my products / remove product <name>\n" +
		"• settings — update your brand details\n" +
		"• support — talk to a human\n" +
		"• restore <code> — move your account to this number\n" +
		"• cancel — stop whatever we're doing"

	msgTechnicalError = "Sorry, something went wrong on my end. Please try again in a moment."

	msgCancelled      = "Okay, cancelled. Nothing was saved."
	msgNothingYet     = "You don't have any receipts yet. Type 'new receipt' to create your first one."
	msgNoReceiptEdit  = "You don't have a receipt to edit yet. Type 'new receipt' first."
	msgUnknownInput   = "I didn't catch that. Reply to the question above, or type 'cancel' to stop."
	msgRegistrations  = "Registrations are currently closed. Please check back later."
	msgOnboardWelcome = "Welcome! Let's set up your business profile. First, what's your brand name?"
	msgAskBrandColor  = "Nice. What's your brand color? (e.g. #1a73e8 or 'blue')"
	msgAskLogo        = "Got it. Send a link to your logo, or type 'skip'."
	msgAskAddress     = "What's your business address?"
	msgAskContact     = "Almost done. Share your contact info (phone and/or email)."

	msgAskCustomerName = "Who is this receipt for? Send the customer's name."
	msgAskItems        = "List the items, separated by commas or new lines.\n" +
		"Tip: catalog products support quantity shorthand, e.g. 'Fanta x2'."
	msgAskPayment = "How did they pay? (cash, card, transfer, ...)"
	msgAskFormat  = "One-time question: how should your receipts look?\n1. Image (PNG)\n2. Document (PDF)"

	msgEditMenu    = "What would you like to change?\n1. Customer name\n2. Items & prices\n3. Payment method"
	msgEditName    = "Send the new customer name."
	msgEditItems   = "Send the full item list again, separated by commas or new lines."
	msgEditPrices  = "Now send the matching prices, in the same order."
	msgEditPayment = "Send the new payment method."
	msgEditAborted = "The item and price counts don't match, so I stopped the edit. Your receipt is unchanged — type 'edit' to try again."

	msgAskProductName  = "What's the product called? (or type 'done' to finish)"
	msgAskProductPrice = "And its price?"
	msgProductRemoved  = "Removed it from your catalog."
	msgProductMissing  = "I couldn't find that product in your catalog."
	msgCatalogEmpty    = "Your catalog is empty. Type 'add product' to create one."

	msgSettingsMenu = "What would you like to update?\n" +
		"1. Brand name\n2. Brand color\n3. Logo\n4. Address\n5. Contact info\n" +
		"6. Receipt format\n7. Receipt template"
	msgAskNewValue = "Send the new value."
	msgAskTemplate = "Which template? Send a number (1-5)."

	msgSupportAsk     = "Tell me what's going on and I'll open a ticket for the team."
	msgSupportOpened  = "Thanks — ticket %s is open. Keep typing here to add details; we'll reply soon."
	msgSupportThread  = "You already have an open ticket (%s). Keep typing here to add to it."
	msgSupportLogged  = "Added to your ticket. The team will get back to you."
	msgSupportClosed  = "Your support ticket %s has been closed. Type 'support' if you need anything else."
	msgTicketNotFound = "No ticket matches that id."
	msgNoOpenTickets  = "No open tickets. 🎉"

	msgRestoreUsage   = "To restore an account, send: restore <your backup code>"
	msgRestoreBadCode = "That backup code doesn't match any account."
	msgRestoreSelf    = "That backup code already belongs to this account."
	msgRestoreDone    = "Done! Your account now lives on this number. Everything came along: receipts, catalog, settings."

	msgPaymentQuote = "You've used up your free receipts. A subscription costs %s %s for %d days — reply 'yes' to get a payment account, or anything else to pass."
	msgEditQuote    = "This receipt has used its free edits. A subscription costs %s %s for %d days — reply 'yes' to get a payment account, or anything else to pass."
	msgPaymentBank  = "Transfer %s %s to:\nBank: %s\nAccount: %s\nYour subscription activates automatically once we see the payment."
	msgPaymentPass  = "No problem. Your existing receipts and history stay right here."
	msgPaymentFail  = "Sorry, I couldn't set up a payment account just now. Please try again later."

	msgAdminMenu    = "Bot settings:\n1. Toggle new-user registrations (currently %s)"
	msgAdminConfirm = "Registrations are currently %s. Switch to %s? (yes/no)"
	msgAdminDone    = "Registrations are now %s."
	msgAdminKept    = "Left as is."
)

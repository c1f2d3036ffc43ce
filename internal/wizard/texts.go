package wizard

import (
	"fmt"
	"strings"

	"github.com/m3rciful/tracker/internal/model"
)

const (
	msgApology        = "Something seems to be a problem, please try again later."
	msgNotLinked      = "You have not linked a Google sheet yet, please type /start to set one up."
	msgInvalidLink    = "That doesn't seem like a Google sheet link, are you sure? Try sending again."
	msgLinked         = "Google sheet successfully linked!"
	msgNoWorries      = "Okay, no worries!"
	msgOkay           = "Okay!"
	msgConfigMenu     = "How can i help you today?"
	msgEntryType      = "What type of entry is this?"
	msgPrice          = "How much is the price? e.g. 1.50"
	msgInvalidPrice   = "Please enter a valid price."
	msgDestinations   = "Please enter the start and end destination seperated by comma.\ne.g. Home, School"
	msgRemarks        = "Please enter the remarks.\ne.g. Bought a new shirt"
	msgTransportType  = "What type of transport is this?"
	msgCategory       = "What category is this?"
	msgSubcategory    = "What subcategory is this?"
	msgPayment        = "What is your mode of payment?"
	msgDefaultPayment = "What is your default mode of payment?"
	msgLogged         = "Transaction logged."
	msgBadFormat      = "Please follow the format and try again."
	msgCancelled      = "Conversation cancelled. Good bye."
	msgNothingToStop  = "There is nothing to cancel. Type /help to see what I can do."
	msgNoOptions      = "Your Dropdown sheet has no options for this step yet. Please fill it in and try again."
)

const (
	optYes = "Yes"
	optNo  = "No"

	optChangeSheet     = "Change Google Sheet"
	optQuickTransport  = "Configure Quick Transport"
	optQuickOthers     = "Configure Quick Others"
	optCancel          = "Cancel"
	// BackLabel is appended to sub-option keyboards of the entry wizard.
	BackLabel = "← Back"
)

var (
	yesNo       = []string{optYes, optNo}
	configMenu  = []string{optChangeSheet, optQuickTransport, optQuickOthers, optCancel}
	helpCommand = "To get started, please type /start\n" +
		"Remember to configure your Dropdown sheet to get started on this bot.\n\n" +
		"To configure, type /config\n" +
		"To add entry, type /addentry\n" +
		"To add transport quickly, type /addtransport\n" +
		"To add others quickly, type /addothers\n" +
		"To stop what you are doing, type /cancel\n"
)

func setupText(templateURL, serviceAccount string) string {
	return "Please set up your Google sheet by following the steps below.\n\n" +
		"1. Go over to " + templateURL + "\n" +
		"2. Go to File > Make a copy\n" +
		"3. Go to File > Share > Share with others\n" +
		"4. Add " + serviceAccount + " as an editor\n" +
		"5. Copy your Google Sheet URL and send it over\n" +
		"Example: https://docs.google.com/spreadsheets/d/abcd1234/edit\n" +
		"6. Edit the Dropdown sheet accordingly\n"
}

func relinkText(sheetID string) string {
	return "Seems like you have already linked a Google sheet with us, do you want to link a different Google sheet with us?\n\n" + SheetURL(sheetID)
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

func presetText(t model.EntryType, p model.Preset) string {
	return fmt.Sprintf("This is your current %s settings.\nDefault Payment: %s\nDefault Type: %s\nDo you want to update it?",
		t, orNone(p.Payment), orNone(p.Category))
}

func quickAddText(t model.EntryType, p model.Preset) string {
	format := "[price],[remarks]\n e.g. 19.99, New shirt"
	if t == model.Transport {
		format = "[price],[start],[end]\n e.g. 2.11, Home, Work"
	}
	return fmt.Sprintf("Quick Add %s\nDefault Payment: %s\nDefault Type: %s\n\nPlease enter as follow: %s", t, p.Payment, p.Category, format)
}

func noPresetText(t model.EntryType) string {
	return fmt.Sprintf("You have not set up your quick add settings for %s yet, please do so by typing /config", strings.ToLower(t.String()))
}

func categoryPrompt(t model.EntryType) string {
	if t == model.Transport {
		return msgTransportType
	}
	return msgCategory
}

func remarksPrompt(t model.EntryType) string {
	if t == model.Transport {
		return msgDestinations
	}
	return msgRemarks
}

func loggedText(e model.Entry) string {
	return fmt.Sprintf("%s\n%s %s: %s (%s)", msgLogged, e.Type, formatPrice(e.Price), e.Category, e.Payment)
}

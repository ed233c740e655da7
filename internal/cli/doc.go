// Package cli implements the interactive catalog shell.
//
// The shell reads one command per line, dispatches it to the catalog
// service, and prints the outcome of every write: synced, saved locally
// only, or left behind in the remote store. A background watcher pings the
// remote store and shows the online/offline state in the prompt.
//
// Commands:
//
//	help                  show available commands
//	(l)ist                list all modules, newest first
//	(s)earch <text>       filter by brand, model, description or price
//	show <id>             show one module
//	add                   add a module (interactive)
//	edit <id>             edit a module (interactive)
//	delete <id>           delete a module
//	import <file.xlsx>    load modules from a spreadsheet
//	export [file.xlsx]    write the price list spreadsheet
//	identify <photo>      guess the phone model from a photo and search for it
//	fixbrands             re-brand iPhone models as Apple
//	sync                  pull the remote snapshot into the local store
//	status                show the connection state
//	exit | quit           leave the program
package cli

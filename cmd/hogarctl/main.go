// Command hogarctl administers households from the command line: seeding
// categories, recording transactions, opening periods and printing reports.
package main

func main() {
	Execute()
}

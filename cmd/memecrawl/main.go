// Package main provides the entry point for the memecrawl CLI.
//
// memecrawl walks the paginated listing of one imgflip meme template and
// collects text, author, counters and image URL of every meme.
//
// Usage:
//
//	memecrawl --source https://imgflip.com/meme/Drake-Hotline-Bling --last-page 3 --json
//	memecrawl -s <listing url> -l 5 --csv --save-images
//
// See --help for all available options.
package main

// main is the entry point for memecrawl.
func main() {
	Execute()
}

// compact-traces rewrites the astro trace log, keeping only the newest
// record per topic key. The engine never rewrites the log itself; run this
// offline while the engine is stopped.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"log"
	"os"
)

func main() {
	path := flag.String("path", "astro_traces.jsonl", "Path to the trace log")
	dryRun := flag.Bool("dry-run", false, "Print stats without rewriting")
	flag.Parse()

	f, err := os.Open(*path)
	if err != nil {
		log.Fatalf("Failed to open trace log: %v", err)
	}

	// Keep the last line per key, in order of each key's final appearance
	latest := make(map[string]string)
	var keys []string
	total := 0
	skipped := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		total++

		var record struct {
			Key string `json:"key"`
		}
		if err := json.Unmarshal([]byte(line), &record); err != nil || record.Key == "" {
			skipped++
			continue
		}

		if _, seen := latest[record.Key]; seen {
			for i, k := range keys {
				if k == record.Key {
					keys = append(keys[:i], keys[i+1:]...)
					break
				}
			}
		}
		latest[record.Key] = line
		keys = append(keys, record.Key)
	}
	f.Close()
	if err := scanner.Err(); err != nil {
		log.Fatalf("Failed to read trace log: %v", err)
	}

	log.Printf("Records: %d total, %d unique keys, %d malformed", total, len(keys), skipped)

	if *dryRun {
		log.Println("Dry run - exiting")
		return
	}

	tmp := *path + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", tmp, err)
	}
	w := bufio.NewWriter(out)
	for _, key := range keys {
		w.WriteString(latest[key])
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		log.Fatalf("Failed to write compacted log: %v", err)
	}
	if err := out.Close(); err != nil {
		log.Fatalf("Failed to close compacted log: %v", err)
	}
	if err := os.Rename(tmp, *path); err != nil {
		log.Fatalf("Failed to replace trace log: %v", err)
	}

	log.Printf("Compacted %d records down to %d", total, len(keys))
}

// event_cycle_check.go: Static event cycle detection for the settlement event bus.
// Usage: go run scripts/event_cycle_check.go
// Reads subscriber registrations in pkg/app, finds which events each subscriber
// emits, lists the services that originate events and fails on any cycle.
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var (
	registerRe = regexp.MustCompile(`bus\.Register\(events\.EventType([A-Za-z0-9]+)\s*,\s*([A-Za-z0-9_]+)\(`)
	emitRe     = regexp.MustCompile(`&events\.([A-Za-z0-9]+)\{`)
	funcRe     = regexp.MustCompile(`^func (?:\([^)]*\)\s*)?([A-Za-z0-9_]+)\(`)
)

// emissions maps each function in the .go files under dir to the event
// types it constructs.
func emissions(dir string) (map[string][]string, error) {
	out := make(map[string][]string)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close() //nolint:errcheck
		scanner := bufio.NewScanner(f)
		var current string
		for scanner.Scan() {
			line := scanner.Text()
			if m := funcRe.FindStringSubmatch(line); m != nil {
				current = m[1]
			}
			if m := emitRe.FindStringSubmatch(line); m != nil && current != "" {
				out[current] = append(out[current], m[1])
			}
		}
		return scanner.Err()
	})
	return out, err
}

func subscriptions(path string) (map[string][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck
	out := make(map[string][]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if m := registerRe.FindStringSubmatch(scanner.Text()); m != nil {
			out[m[1]] = append(out[m[1]], m[2])
		}
	}
	return out, scanner.Err()
}

func findCycle(graph map[string][]string) []string {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var path []string
	var dfs func(string) []string
	dfs = func(node string) []string {
		if onStack[node] {
			return append(append([]string(nil), path...), node)
		}
		if visited[node] {
			return nil
		}
		visited[node] = true
		onStack[node] = true
		path = append(path, node)
		for _, next := range graph[node] {
			if c := dfs(next); c != nil {
				return c
			}
		}
		onStack[node] = false
		path = path[:len(path)-1]
		return nil
	}
	nodes := make([]string, 0, len(graph))
	for n := range graph {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	for _, n := range nodes {
		if c := dfs(n); c != nil {
			return c
		}
	}
	return nil
}

func eventCycleCheck() int {
	subs, err := subscriptions("pkg/app/subscribers.go")
	if err != nil {
		fmt.Println("Error: could not read subscriptions:", err)
		return 1
	}
	handlerEmits, err := emissions("pkg/app")
	if err != nil {
		fmt.Println("Error scanning subscribers:", err)
		return 1
	}
	origins, err := emissions("pkg/service")
	if err != nil {
		fmt.Println("Error scanning services:", err)
		return 1
	}

	fmt.Println("Event origins:")
	for fn, evts := range origins {
		fmt.Printf("  %s -> %v\n", fn, evts)
	}

	graph := make(map[string][]string)
	for evt, handlers := range subs {
		for _, h := range handlers {
			graph[evt] = append(graph[evt], handlerEmits[h]...)
		}
	}
	fmt.Println("\nEvent Flow Graph:")
	for from, tos := range graph {
		fmt.Printf("  %s -> %v\n", from, tos)
	}

	if c := findCycle(graph); c != nil {
		fmt.Println("\n❌ Event cycle detected:", strings.Join(c, " -> "))
		return 1
	}
	fmt.Println("\n✅ No event cycles detected.")
	return 0
}

func main() {
	os.Exit(eventCycleCheck())
}

package main

import (
	"io"
	"strconv"

	"github.com/CTAG07/ngramchain/pkg/ngram"
	"github.com/CTAG07/ngramchain/pkg/store"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

// printTableOfSnapshots writes the given snapshot infos to the given writer as
// an ASCII table. The table headers are set to Name, Kind, Size, and Updated.
func printTableOfSnapshots(writer io.Writer, infos []store.SnapshotInfo) {
	table := tablewriter.NewWriter(writer)

	table.SetHeader([]string{"Name", "Kind", "Size", "Updated"})

	for _, info := range infos {
		table.Append([]string{
			info.Name,
			string(info.Kind),
			humanize.Bytes(uint64(info.Size)),
			humanize.Time(info.UpdatedAt),
		})
	}

	table.Render()
}

// printTableOfChainStats writes the statistics of a string model as a two
// column table.
func printTableOfChainStats(writer io.Writer, stats ngram.ChainStats) {
	table := tablewriter.NewWriter(writer)

	table.SetHeader([]string{"Stat", "Value"})
	table.AppendBulk([][]string{
		{"Kind", string(store.KindString)},
		{"N-Grams", strconv.Itoa(stats.NGrams)},
		{"Windows", humanize.Comma(int64(stats.Windows))},
		{"Starting Tokens", humanize.Comma(int64(stats.StartingTokens))},
		{"Distinct Tokens", humanize.Comma(int64(stats.DistinctTokens))},
	})

	table.Render()
}

// printTableOfIndexedStats writes the statistics and stored generation
// defaults of an indexed model as a two column table.
func printTableOfIndexedStats(writer io.Writer, stats ngram.IndexedStats, config ngram.IndexedConfig) {
	table := tablewriter.NewWriter(writer)

	from := config.From
	if from == "" {
		from = "(random)"
	}

	table.SetHeader([]string{"Stat", "Value"})
	table.AppendBulk([][]string{
		{"Kind", string(store.KindIndexed)},
		{"Sentences", humanize.Comma(int64(stats.Sentences))},
		{"Dictionary Size", humanize.Comma(int64(stats.DictionarySize))},
		{"Total Tokens", humanize.Comma(int64(stats.TotalTokens))},
		{"Longest Sentence", strconv.Itoa(stats.LongestLength)},
		{"Default From", from},
		{"Default Grams", strconv.Itoa(config.Grams)},
		{"Default Backward", strconv.FormatBool(config.Backward)},
	})

	table.Render()
}

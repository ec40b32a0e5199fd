package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"flockscope/internal/dao"
)

var (
	listStart int
	listLimit int
)

var recordCommand = &cobra.Command{
	Use:   "record",
	Short: "Manage stored analysis records",
}

var recordListCommand = &cobra.Command{
	Use:   "list",
	Short: "List analysis records, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		svc, err := newService(loadConfig(), nil)
		if err != nil {
			logrus.WithError(err).Fatal("create service failed")
		}
		defer svc.Close()

		records, total, err := svc.Records().List(listStart, listLimit)
		if err != nil {
			logrus.WithError(err).Fatal("list records failed")
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tINPUT\tFRAMES\tBIRDS")
		for _, r := range records {
			frames, birds := 0, 0
			if r.Result != nil {
				frames, birds = r.Result.TotalFramesProcessed, r.Result.UniqueBirdsTracked
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", r.Id, r.CreateTime.Format("2006-01-02 15:04:05"), r.Input, frames, birds)
		}
		w.Flush()
		fmt.Printf("%d of %d records\n", len(records), total)
	},
}

var recordShowCommand = &cobra.Command{
	Use:   "show <analysis_id>",
	Short: "Print one analysis record as JSON",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc, err := newService(loadConfig(), nil)
		if err != nil {
			logrus.WithError(err).Fatal("create service failed")
		}
		defer svc.Close()

		record, err := svc.Records().Get(args[0])
		if err != nil {
			logrus.WithError(err).Fatal("get record failed")
		} else if record == nil {
			logrus.Fatalf("analysis %s not found", args[0])
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(dao.FromRecord(record, false)); err != nil {
			logrus.WithError(err).Fatal("encode record failed")
		}
	},
}

var recordDeleteCommand = &cobra.Command{
	Use:   "delete <analysis_id>",
	Short: "Delete an analysis record and its annotated video",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc, err := newService(loadConfig(), nil)
		if err != nil {
			logrus.WithError(err).Fatal("create service failed")
		}
		defer svc.Close()

		ok, err := svc.Delete(args[0])
		if err != nil {
			logrus.WithError(err).Fatal("delete record failed")
		} else if !ok {
			logrus.Fatalf("analysis %s not found", args[0])
		}
		logrus.Infof("analysis %s deleted", args[0])
	},
}

func init() {
	recordListCommand.Flags().IntVar(&listStart, "start", 0, "Offset of the first record")
	recordListCommand.Flags().IntVar(&listLimit, "limit", 20, "Max records to list, 0 for all")

	recordCommand.AddCommand(recordListCommand)
	recordCommand.AddCommand(recordShowCommand)
	recordCommand.AddCommand(recordDeleteCommand)
}

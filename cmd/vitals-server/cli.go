package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ehr/vitals/internal/config"
	"github.com/ehr/vitals/internal/domain/vitals"
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeLines(w io.Writer, lines []string) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

// patientArg parses an optional patient id argument; absent means all.
func patientArg(args []string) (int, error) {
	if len(args) == 0 {
		return vitals.AllPatients, nil
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid patient id %q", args[0])
	}
	return id, nil
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Parse a vitals file and report patients and rejected lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithoutDataFile(cmd.Flags())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := newLogger(cfg.Env, cfg.LogLevel)
			svc := vitals.NewService(vitals.NewVisitFileRepo(args[0]), logger)
			res, err := svc.Load(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(out, res.Summary())
			}
			lines := vitals.PatientReportLines(res.Store.Records())
			lines = append(lines, fmt.Sprintf("Accepted %d lines for %d patients, rejected %d.",
				res.Accepted, res.Store.Len(), len(res.Rejected)))
			for _, le := range res.Rejected {
				lines = append(lines, fmt.Sprintf("  line %d: %s", le.LineNumber, le.Message))
			}
			return writeLines(out, lines)
		},
	}
	cmd.Flags().Bool("json", false, "print JSON instead of text")
	return cmd
}

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [patient-id]",
		Short: "Print average vital signs for one patient or all patients",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := patientArg(args)
			if err != nil {
				return err
			}
			svc, _, _, err := loadService(cmd)
			if err != nil {
				return err
			}
			stats, err := svc.Stats(cmd.Context(), id)
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(cmd.OutOrStdout(), stats)
			}
			return writeLines(cmd.OutOrStdout(), vitals.StatsReportLines(stats))
		},
	}
	cmd.Flags().Bool("json", false, "print JSON instead of text")
	return cmd
}

func followUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "follow-up",
		Short: "List patients with at least one out-of-range visit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, _, err := loadService(cmd)
			if err != nil {
				return err
			}
			ids, err := svc.FollowUps(cmd.Context())
			if err != nil {
				return err
			}
			lines := make([]string, 0, len(ids))
			for _, id := range ids {
				lines = append(lines, strconv.Itoa(id))
			}
			return writeLines(cmd.OutOrStdout(), lines)
		},
	}
}

func visitsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visits",
		Short: "List visits, optionally filtered by year and month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			year, _ := cmd.Flags().GetString("year")
			month, _ := cmd.Flags().GetString("month")
			f, err := vitals.ParseDateFilter(year, month)
			if err != nil {
				return err
			}
			svc, _, _, err := loadService(cmd)
			if err != nil {
				return err
			}
			visits, err := svc.VisitsByDate(cmd.Context(), f)
			if err != nil {
				return err
			}
			lines := make([]string, 0, len(visits))
			for _, pv := range visits {
				lines = append(lines, vitals.FormatLine(pv.PatientID, pv.Visit))
			}
			return writeLines(cmd.OutOrStdout(), lines)
		},
	}
	cmd.Flags().String("year", "", "visit year")
	cmd.Flags().String("month", "", "visit month (requires --year)")
	return cmd
}

func addCmd() *cobra.Command {
	var (
		patientID int
		in        vitals.VisitInput
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Validate a visit and append it to the data file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, _, err := loadService(cmd)
			if err != nil {
				return err
			}
			rec, err := svc.AddVisit(cmd.Context(), patientID, in)
			if err != nil {
				return err
			}
			return writeLines(cmd.OutOrStdout(), vitals.PatientReportLines([]vitals.PatientRecord{rec}))
		},
	}
	fs := cmd.Flags()
	fs.IntVar(&patientID, "patient", 0, "patient id")
	fs.StringVar(&in.Date, "date", "", "visit date, YYYY-MM-DD")
	fs.Float64Var(&in.Temperature, "temp", 0, "body temperature, C")
	fs.IntVar(&in.HeartRate, "hr", 0, "heart rate, bpm")
	fs.IntVar(&in.RespiratoryRate, "rr", 0, "respiratory rate, bpm")
	fs.IntVar(&in.SystolicBP, "sbp", 0, "systolic blood pressure, mmHg")
	fs.IntVar(&in.DiastolicBP, "dbp", 0, "diastolic blood pressure, mmHg")
	fs.IntVar(&in.OxygenSaturation, "spo2", 0, "oxygen saturation, %")
	for _, name := range []string{"patient", "date", "temp", "hr", "rr", "sbp", "dbp", "spo2"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <patient-id>",
		Short: "Delete every visit of a patient and rewrite the data file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(strings.TrimSpace(args[0]))
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid patient id %q", args[0])
			}
			svc, _, _, err := loadService(cmd)
			if err != nil {
				return err
			}
			n, err := svc.DeleteAllVisits(cmd.Context(), id)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Data for patient %d has been deleted (%d visits).\n", id, n)
			return err
		},
	}
}

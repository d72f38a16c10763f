package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"techcrew/internal/config"
	"techcrew/internal/kafka"
	"techcrew/internal/models"
)

var auditGroup string

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Tail the change audit topic",
	Long:  "Reads row changes from KAFKA_TOPIC_CHANGES on KAFKA_BROKERS until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger(false)
		if err != nil {
			return err
		}
		defer log.Close()

		cfg := config.Load().Kafka
		group := cfg.GroupID
		if auditGroup != "" {
			group = auditGroup
		}
		consumer := kafka.NewConsumer(cfg.Brokers, cfg.ChangesTopic, group, log)
		defer consumer.Close()

		out := cmd.OutOrStdout()
		ops := map[models.ChangeOp]*color.Color{
			models.OpInsert: color.New(color.FgGreen),
			models.OpUpdate: color.New(color.FgYellow),
			models.OpDelete: color.New(color.FgRed),
		}
		return consumer.Start(cmd.Context(), func(c models.Change) error {
			op := ops[c.Op]
			if op == nil {
				op = color.New(color.Reset)
			}
			fmt.Fprintf(out, "%s %-8s %-20s %s by %s\n",
				c.At.Local().Format("2006-01-02 15:04:05"), op.Sprint(c.Op), c.Table, c.ID, c.ActorID)
			return nil
		})
	},
}

func init() {
	auditCmd.Flags().StringVar(&auditGroup, "group", "", "consumer group (default $KAFKA_GROUP_ID)")
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paiban/visitcare/pkg/model"
	"github.com/paiban/visitcare/pkg/orderstatus"
	"github.com/paiban/visitcare/pkg/roster"
	"github.com/paiban/visitcare/pkg/timeslot"
	"github.com/paiban/visitcare/pkg/traveltime"
	"github.com/paiban/visitcare/pkg/validator"
)

func newAuditCmd() *cobra.Command {
	var (
		snapshot string
		date     string
		strict   bool
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "检查某天全部已分配订单",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := model.DayOfWeekOf(date); !ok {
				return fmt.Errorf("--date 格式必须为 YYYY-MM-DD: %q", date)
			}
			snap, err := loadSnapshot(cmd, snapshot)
			if err != nil {
				return err
			}
			idx := snap.Index()

			f := validator.NewAuditor(nil).Audit(&validator.AuditInput{
				Orders:         snap.OrdersOn(date),
				Staff:          idx.Staff,
				Customers:      idx.Customers,
				Unavailability: snap.Unavailability,
				ServiceTypes:   idx.ServiceTypes,
			})

			out := cmd.OutOrStdout()
			for _, x := range f.Flatten() {
				fmt.Fprintf(out, "[%s] %s %s %s: %s\n", x.Severity, x.OrderID, x.StaffID, x.Type, x.Message)
			}
			errs, warns := f.Count()
			fmt.Fprintf(out, "%s: %d errors, %d warnings\n", date, errs, warns)

			if strict && errs > 0 {
				return ErrRejected
			}
			return nil
		},
	}

	snapshotFlag(cmd.Flags(), &snapshot)
	cmd.Flags().StringVar(&date, "date", "", "检查日期 YYYY-MM-DD")
	cmd.Flags().BoolVar(&strict, "strict", false, "存在阻断级问题时以非零状态退出")
	return cmd
}

func newCheckMoveCmd() *cobra.Command {
	var (
		snapshot string
		orderID  string
		staffID  string
		sourceID string
		start    string
		end      string
	)

	cmd := &cobra.Command{
		Use:   "check-move",
		Short: "判断一次拖放变更是否可行",
		RunE: func(cmd *cobra.Command, args []string) error {
			if start != "" || end != "" {
				if err := timeslot.ValidRange(start, end); err != nil {
					return err
				}
			}
			snap, err := loadSnapshot(cmd, snapshot)
			if err != nil {
				return err
			}
			idx := snap.Index()

			order := idx.Orders[orderID]
			if order == nil {
				return fmt.Errorf("订单 %s 不存在", orderID)
			}
			if order.Status.IsTerminal() {
				return fmt.Errorf("订单 %s 状态为 %s，不可编辑", order.ID, order.Status)
			}

			d := validator.ValidateMove(&validator.MoveRequest{
				Order:             order,
				TargetStaffID:     staffID,
				Reschedule:        sourceID == staffID && order.HasStaff(staffID),
				Staff:             idx.Staff,
				Customers:         idx.Customers,
				TargetStaffOrders: snap.OrdersOfStaff(staffID, order.Date),
				Unavailability:    snap.Unavailability,
				NewStartTime:      start,
				NewEndTime:        end,
				ServiceTypes:      idx.ServiceTypes,
				TravelTimes:       traveltime.FromEntries(snap.TravelTimes),
			})

			out := cmd.OutOrStdout()
			if !d.Allowed {
				fmt.Fprintf(out, "rejected [%s]: %s\n", d.Rule, d.Reason)
				return ErrRejected
			}

			day, _ := model.DayOfWeekOf(order.Date)
			required := roster.RequiredStaffCount(order, idx.Customers[order.CustomerID], day)
			next := roster.Next(order.AssignedStaffIDs, staffID, sourceID, required)

			fmt.Fprintln(out, "allowed")
			for _, w := range d.Warnings {
				fmt.Fprintf(out, "  warning: %s\n", w)
			}
			fmt.Fprintf(out, "roster: [%s] (%d/%d)\n", strings.Join(next, ", "), len(next), required)
			return nil
		},
	}

	snapshotFlag(cmd.Flags(), &snapshot)
	cmd.Flags().StringVar(&orderID, "order", "", "订单ID")
	cmd.Flags().StringVar(&staffID, "staff", "", "目标人员ID")
	cmd.Flags().StringVar(&sourceID, "source", "", "来源人员ID，空表示来自未分配区")
	cmd.Flags().StringVar(&start, "start", "", "新开始时间 HH:MM")
	cmd.Flags().StringVar(&end, "end", "", "新结束时间 HH:MM")
	_ = cmd.MarkFlagRequired("order")
	_ = cmd.MarkFlagRequired("staff")
	return cmd
}

func newTransitionCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "transition",
		Short: "检查订单状态迁移是否合法",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if err := orderstatus.Transition(model.OrderStatus(from), model.OrderStatus(to)); err != nil {
				fmt.Fprintln(out, err.Error())
				return ErrRejected
			}
			fmt.Fprintf(out, "ok: %s -> %s\n", from, to)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "当前状态")
	cmd.Flags().StringVar(&to, "to", "", "目标状态")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

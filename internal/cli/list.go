package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"flourmill/internal/guard"
	"flourmill/internal/session"

	"github.com/spf13/cobra"
)

var (
	listPage  int
	listLimit int
)

var suppliersCmd = &cobra.Command{
	Use:   "suppliers",
	Short: "Work with wheat suppliers",
}

var suppliersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List suppliers",
	RunE:  runSuppliersList,
}

var purchasesCmd = &cobra.Command{
	Use:   "purchases",
	Short: "Work with purchase orders",
}

var purchasesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List purchase orders",
	RunE:  runPurchasesList,
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Work with system accounts",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List user accounts",
	RunE:  runUsersList,
}

func init() {
	for _, c := range []*cobra.Command{suppliersListCmd, purchasesListCmd, usersListCmd} {
		c.Flags().IntVar(&listPage, "page", 1, "page number")
		c.Flags().IntVar(&listLimit, "limit", 20, "items per page")
	}

	suppliersCmd.AddCommand(suppliersListCmd)
	purchasesCmd.AddCommand(purchasesListCmd)
	usersCmd.AddCommand(usersListCmd)
	rootCmd.AddCommand(suppliersCmd, purchasesCmd, usersCmd)
}

// checkGuard evaluates g for the requested screen and converts anything
// other than an authorized decision into an actionable error.
func checkGuard(g *guard.Guard, requested string, sm *session.Manager) error {
	decision := g.Evaluate(requested)
	switch decision.State {
	case guard.StateAuthorized:
		return nil
	case guard.StateUnauthenticated:
		return errors.New("not signed in. Run 'millctl login'")
	case guard.StateForbidden:
		return fmt.Errorf("access denied: role %q may not view %s", sm.Role(), requested)
	default:
		return errors.New("session is still loading; try again")
	}
}

func runSuppliersList(cmd *cobra.Command, args []string) error {
	sm, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	if err := checkGuard(guard.Staff(sm), "/suppliers", sm); err != nil {
		return err
	}

	var suppliers []struct {
		Name        string `json:"name"`
		CompanyName string `json:"company_name"`
		Phone       string `json:"phone"`
		IsActive    bool   `json:"is_active"`
	}
	total, err := fetchList(cmd.Context(), sm.Token(), "/api/suppliers", listPage, listLimit, &suppliers)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCOMPANY\tPHONE\tACTIVE")
	for _, s := range suppliers {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", s.Name, s.CompanyName, s.Phone, s.IsActive)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d suppliers\n", len(suppliers), total)
	return nil
}

func runPurchasesList(cmd *cobra.Command, args []string) error {
	sm, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	if err := checkGuard(guard.SalesDesk(sm), "/purchases", sm); err != nil {
		return err
	}

	var purchases []struct {
		PurchaseNo    string `json:"purchase_no"`
		TotalAmount   string `json:"total_amount"`
		PaidAmount    string `json:"paid_amount"`
		PaymentStatus string `json:"payment_status"`
	}
	total, err := fetchList(cmd.Context(), sm.Token(), "/api/purchases", listPage, listLimit, &purchases)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PO\tTOTAL\tPAID\tSTATUS")
	for _, p := range purchases {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.PurchaseNo, p.TotalAmount, p.PaidAmount, p.PaymentStatus)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d purchase orders\n", len(purchases), total)
	return nil
}

func runUsersList(cmd *cobra.Command, args []string) error {
	sm, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	if err := checkGuard(guard.AdminOnly(sm), "/users", sm); err != nil {
		return err
	}

	var users []struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Role      string `json:"role"`
		IsActive  bool   `json:"is_active"`
	}
	total, err := fetchList(cmd.Context(), sm.Token(), "/api/users", listPage, listLimit, &users)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tEMAIL\tROLE\tACTIVE")
	for _, u := range users {
		fmt.Fprintf(w, "%s %s\t%s\t%s\t%t\n", u.FirstName, u.LastName, u.Email, u.Role, u.IsActive)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d users\n", len(users), total)
	return nil
}

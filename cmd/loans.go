package main

import (
	"context"
	"fmt"
	"time"

	"github.com/hardbound/stacks/internal/models"
	"github.com/hardbound/stacks/internal/shared"
	"github.com/urfave/cli/v3"
)

// LoansList lists loans. Open loans only unless --all is set.
func (r *Runner) LoansList(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	callCtx, cancel := r.callCtx(ctx)
	defer cancel()

	loans, err := r.library.ListLoans(callCtx, !cmd.Bool("all"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(loans, cmd.Bool("pretty"))
	}

	r.printLoans(loans)
	return nil
}

// LoansOverdue lists open loans past their due date.
func (r *Runner) LoansOverdue(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	callCtx, cancel := r.callCtx(ctx)
	defer cancel()

	loans, err := r.library.OverdueLoans(callCtx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(loans, cmd.Bool("pretty"))
	}

	if len(loans) == 0 {
		r.writePlainln("No overdue loans.")
		return nil
	}

	r.printLoans(loans)
	return nil
}

// LoansCheckout checks a book out to a member.
func (r *Runner) LoansCheckout(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	callCtx, cancel := r.callCtx(ctx)
	defer cancel()

	loan, err := r.library.CheckoutLoan(callCtx, cmd.String("book"), cmd.String("user"))
	if err != nil {
		return err
	}

	r.logger.Infof("loan created: %v", loan.ID)
	r.writePlain("✓ Checked out %q to %s\n", loan.BookTitle, loan.Username)
	r.writePlain("  Due: %s\n", shared.FormatDate(loan.DueAt))
	return nil
}

// LoansReturn closes a loan.
func (r *Runner) LoansReturn(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: loan id is required", shared.ErrMissingArgument)
	}

	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	callCtx, cancel := r.callCtx(ctx)
	defer cancel()

	loan, err := r.library.ReturnLoan(callCtx, id)
	if err != nil {
		return err
	}

	r.writePlain("✓ Returned %q\n", loan.BookTitle)
	return nil
}

func (r *Runner) printLoans(loans []models.Loan) {
	now := time.Now()

	r.writePlain("Found %d loans:\n\n", len(loans))
	for i, l := range loans {
		marker := ""
		if l.Overdue(now) {
			marker = " [OVERDUE]"
		}
		r.writePlain("%d. %q → %s%s\n", i+1, l.BookTitle, l.Username, marker)
		r.writePlain("   ID: %s\n", l.ID)
		r.writePlain("   Loaned: %s  Due: %s  Status: %s\n",
			shared.FormatDate(l.LoanedAt), shared.FormatDate(l.DueAt), shared.LoanStatusString(l.Returned()))
	}
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/mkulima/kilimo/core"
	"github.com/mkulima/kilimo/core/admin"
	"github.com/mkulima/kilimo/core/allocation"
	"github.com/mkulima/kilimo/core/identity"
	"github.com/mkulima/kilimo/storage/document"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db            *sql.DB
	adminSvc      *admin.Service
	allocationSvc *allocation.Service
	identitySvc   *identity.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate                       - apply pending database migrations")
	fmt.Println("  createadmin -name NAME -email EMAIL - create a dashboard admin; password prompted")
	fmt.Println("  syncallocations               - run the tag/room allocation reconciliation")
	fmt.Println("  fixstatus                     - recompute allocation statuses from assignments")
	fmt.Println("  generateid -type staff|resource_person - issue the next sequential id")
	fmt.Println("  freeid -id ID -reason REASON  - release an id back to the available pool")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createAdminCmd := flag.NewFlagSet("createadmin", flag.ExitOnError)
	createAdminName := createAdminCmd.String("name", "", "The admin's display name.")
	createAdminEmail := createAdminCmd.String("email", "", "The admin's email. The password will be prompted next.")

	generateIDCmd := flag.NewFlagSet("generateid", flag.ExitOnError)
	generateIDType := generateIDCmd.String("type", "", "Id type: staff or resource_person.")

	freeIDCmd := flag.NewFlagSet("freeid", flag.ExitOnError)
	freeIDValue := freeIDCmd.String("id", "", "The id value to free, e.g. ST-0C0S0S7.")
	freeIDReason := freeIDCmd.String("reason", "", "Why the id is being freed; kept in the audit trail.")

	switch args[1] {
	case "migrate":
		return document.Migrate(cli.db)
	case "createadmin":
		if err := createAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *createAdminName == "" || *createAdminEmail == "" {
			createAdminCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			createAdminCmd.Usage()
			return errHelp
		}
		return cli.createAdmin(*createAdminName, *createAdminEmail, string(pwd))
	case "syncallocations":
		return cli.syncAllocations()
	case "fixstatus":
		return cli.fixStatus()
	case "generateid":
		if err := generateIDCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *generateIDType != identity.TypeStaff && *generateIDType != identity.TypeResourcePerson {
			generateIDCmd.Usage()
			return errHelp
		}
		return cli.generateID(*generateIDType)
	case "freeid":
		if err := freeIDCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *freeIDValue == "" || *freeIDReason == "" {
			freeIDCmd.Usage()
			return errHelp
		}
		return cli.freeID(*freeIDValue, *freeIDReason)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) createAdmin(name, email, pwd string) error {
	a, err := cli.adminSvc.Create(context.Background(), name, core.CleanString(email, true /* lower */), pwd)
	if err != nil {
		return err
	}
	logger.Printf("admin %s (%s) created", a.Name, a.Email)
	return nil
}

func (cli *commandLine) syncAllocations() error {
	report, err := cli.allocationSvc.Synchronize(context.Background())
	if err != nil {
		return err
	}
	logger.Printf(
		"allocated=%d noRooms=%d noTags=%d roomsUpdated=%d tagsUpdated=%d inconsistencies=%d",
		report.Allocated, report.NoRooms, report.NoTags,
		report.RoomsUpdated, report.TagsUpdated, report.Inconsistencies,
	)
	return nil
}

func (cli *commandLine) fixStatus() error {
	report, err := cli.allocationSvc.FixAllocationStatus(context.Background(), func(processed, total int, note string) {
		logger.Printf("fix status: %d/%d %s", processed, total, note)
	})
	if err != nil {
		return err
	}
	logger.Printf("scanned=%d fixed=%d inconsistencies=%d", report.Scanned, report.Fixed, report.Inconsistencies)
	return nil
}

func (cli *commandLine) generateID(idType string) error {
	var gid identity.GeneratedID
	var err error
	if idType == identity.TypeStaff {
		gid, err = cli.identitySvc.GenerateStaffID(context.Background())
	} else {
		gid, err = cli.identitySvc.GenerateResourcePersonID(context.Background())
	}
	if err != nil {
		return err
	}
	logger.Printf("generated %s", gid.Value)
	return nil
}

func (cli *commandLine) freeID(value, reason string) error {
	gid, err := cli.identitySvc.AdminFree(context.Background(), value, reason)
	if err != nil {
		return err
	}
	logger.Printf("%s freed (used %d times)", gid.Value, gid.UsageCount)
	return nil
}

package controller

import (
	"bufio"
	"context"
	"engdis_bot/internal/config"
	"engdis_bot/internal/model"
	"engdis_bot/internal/service"
	"engdis_bot/internal/util"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/common-nighthawk/go-figure"
)

// BotController 交互式菜单层：纯终端 I/O 粘合，所有业务逻辑都在
// service 层。
type BotController struct {
	cfg         *config.Config
	reader      *bufio.Reader
	assignments *service.AssignmentService
	progress    *service.ProgressService

	selectedUnit  *model.CourseNode
	selectedLevel *model.CourseNode
}

func NewBotController(cfg *config.Config, assignments *service.AssignmentService, progress *service.ProgressService) *BotController {
	return &BotController{
		cfg:         cfg,
		reader:      bufio.NewReader(os.Stdin),
		assignments: assignments,
		progress:    progress,
	}
}

func PrintWelcome() {
	figure.NewFigure("EngDis Bot", "", true).Print()
	fmt.Println()
	fmt.Println("[*] Assignment bot for English Discoveries.")
	fmt.Println("[*] Press Ctrl+C to interrupt a run at the next task boundary.")
	fmt.Println()
}

// Credentials 启动参数：配置/环境变量缺失的项在终端补问
type Credentials struct {
	BaseURL  string
	Username string
	Password string
}

func (c *BotController) prompt(label string) string {
	fmt.Print(label)
	line, _ := c.reader.ReadString('\n')
	return strings.TrimSpace(line)
}

// PromptCredentials 选择 subject（决定 base URL）并收集账号密码。
// 在服务装配之前调用，所以不挂在 BotController 上。
func PromptCredentials(cfg *config.Config) Credentials {
	reader := bufio.NewReader(os.Stdin)
	ask := func(label string) string {
		fmt.Print(label)
		line, _ := reader.ReadString('\n')
		return strings.TrimSpace(line)
	}

	subject := strings.ToLower(cfg.EngDis.Subject)
	if subject == "" {
		subject = strings.ToLower(ask("[?] Choose subject (fe1 or fe2): "))
	}
	baseURL := cfg.EngDis.BaseURLFe2
	if subject == "fe1" {
		baseURL = cfg.EngDis.BaseURLFe1
	}

	username := cfg.EngDis.Username
	if username == "" {
		username = ask("[?] Student ID: ")
	}
	password := cfg.EngDis.Password
	if password == "" {
		password = ask("[?] Password: ")
	}
	fmt.Println()

	return Credentials{BaseURL: baseURL, Username: username, Password: password}
}

// MainMenu 主循环，ctx 取消（Ctrl+C）时退出
func (c *BotController) MainMenu(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		fmt.Println("\n[*] Main menu:")
		fmt.Println("1. Work on assignments for a specific unit/level")
		fmt.Println("2. Work on assignments for ALL units")
		fmt.Println("3. Show progress")
		fmt.Println("4. Re-pick unit/level")
		fmt.Println("5. Logout & exit")

		switch c.prompt("[?] Choose an option (1-5): ") {
		case "1":
			if err := c.ensureSelection(ctx); err != nil {
				c.report(err)
				continue
			}
			fmt.Printf("\n[*] Working on unit %q, level %q\n", c.selectedUnit.Name, c.selectedLevel.Name)
			if err := c.assignments.ResolveAssignment(ctx, *c.selectedUnit, *c.selectedLevel); err != nil {
				c.report(err)
			} else {
				fmt.Println("[#] Level done.")
			}
		case "2":
			fmt.Println("\n[*] Working on ALL assignments for ALL units")
			if err := c.assignments.ResolveAllAssignments(ctx); err != nil {
				c.report(err)
			} else {
				fmt.Println("[#] All units done.")
			}
		case "3":
			c.showProgress(ctx)
		case "4":
			if err := c.selectUnitAndLevel(ctx); err != nil {
				c.report(err)
			}
		case "5":
			return nil
		default:
			fmt.Println("[!]", util.ErrInvalidSelectionIndex)
		}
	}
}

func (c *BotController) report(err error) {
	if errors.Is(err, context.Canceled) {
		fmt.Println("\n[!] Run interrupted.")
		return
	}
	fmt.Println("[!] Error:", err)
}

func (c *BotController) ensureSelection(ctx context.Context) error {
	if c.selectedUnit != nil && c.selectedLevel != nil {
		return nil
	}
	return c.selectUnitAndLevel(ctx)
}

func (c *BotController) selectUnitAndLevel(ctx context.Context) error {
	units, err := c.progress.Course.GetDefaultCourseProgress(ctx)
	if err != nil {
		return err
	}

	fmt.Println("\n[*] Units:")
	for i, u := range units {
		fmt.Printf("  %2d  %-12s %s\n", i, u.NodeID, u.Name)
	}
	idx, err := strconv.Atoi(c.prompt("[?] Pick a unit (index): "))
	if err != nil || idx < 0 || idx >= len(units) {
		return util.ErrInvalidSelectionIndex
	}
	unit := units[idx]

	levels, err := c.progress.Course.GetCourseTree(ctx, unit.NodeID, unit.ParentNodeID)
	if err != nil {
		return err
	}
	if len(levels) == 0 {
		return fmt.Errorf("no levels found for unit %q", unit.Name)
	}

	fmt.Println("\n[*] Levels:")
	for i, l := range levels {
		fmt.Printf("  %2d  %-12s %s\n", i, l.NodeID, l.Name)
	}
	idx, err = strconv.Atoi(c.prompt("[?] Pick a level (index): "))
	if err != nil || idx < 0 || idx >= len(levels) {
		return util.ErrInvalidSelectionIndex
	}
	level := levels[idx]

	c.selectedUnit = &unit
	c.selectedLevel = &level
	fmt.Printf("\n[#] Selected unit: %s\n", unit.Name)
	fmt.Printf("[#] Selected level: %s\n", level.Name)
	return nil
}

func (c *BotController) showProgress(ctx context.Context) {
	fmt.Println("\n[*] Fetching progress...")
	units, err := c.progress.UnitProgress(ctx)
	if err != nil {
		c.report(err)
		return
	}

	fmt.Println("\n[*] Progress per unit:")
	for _, p := range units {
		fmt.Printf("%-24s [%s] %3d%% (%d/%d)\n",
			p.Name, util.ProgressBar(p.Percent, 20), p.Percent, p.Completed, p.Total)
	}

	if c.selectedUnit != nil {
		levels, err := c.progress.LevelProgress(ctx, *c.selectedUnit)
		if err != nil {
			c.report(err)
			return
		}
		fmt.Printf("\n[*] Progress in unit %q:\n", c.selectedUnit.Name)
		for _, p := range levels {
			fmt.Printf("%-24s [%s] %3d%% (%d/%d)\n",
				p.Name, util.ProgressBar(p.Percent, 20), p.Percent, p.Completed, p.Total)
		}
	}
}

package bootstrap

import (
	"fmt"

	"github.com/spf13/cobra"
)

// CLIApplication 命令行应用（组合 Application + cobra）
//
// Execute 同步执行：先走完启动事件流，再运行命令，结束后优雅关停。
type CLIApplication struct {
	*Application

	rootCmd *cobra.Command
}

// NewCLI 创建命令行应用
func NewCLI(rootCmd *cobra.Command, opts ...Option) *CLIApplication {
	return &CLIApplication{
		Application: New(opts...),
		rootCmd:     rootCmd,
	}
}

// AddCommand 添加子命令
func (c *CLIApplication) AddCommand(cmds ...*cobra.Command) {
	c.rootCmd.AddCommand(cmds...)
}

// RootCmd 根命令
func (c *CLIApplication) RootCmd() *cobra.Command {
	return c.rootCmd
}

// Execute 启动应用并执行命令，无论成败都会优雅关停
func (c *CLIApplication) Execute() error {
	ctx := c.Context()
	c.Start(ctx)

	err := c.rootCmd.ExecuteContext(ctx)

	c.Stop()

	if err != nil {
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

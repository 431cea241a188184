// Package cli 提供离线检查工具 visitctl 的命令
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/paiban/visitcare/pkg/model"
)

// ErrRejected 变更被拒绝或状态迁移非法，用于非零退出
var ErrRejected = errors.New("rejected")

// NewRootCmd 创建 visitctl 根命令
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "visitctl",
		Short:         "上门护理派单离线检查工具",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newAuditCmd(),
		newCheckMoveCmd(),
		newTransitionCmd(),
	)
	return root
}

// snapshotFlag 注册 --snapshot 参数
func snapshotFlag(fs *pflag.FlagSet, p *string) {
	fs.StringVarP(p, "snapshot", "s", "", "JSON 快照文件路径，- 表示标准输入")
}

// loadSnapshot 读取快照，path 为 - 时读标准输入
func loadSnapshot(cmd *cobra.Command, path string) (*model.Snapshot, error) {
	if path == "" {
		return nil, fmt.Errorf("必须指定 --snapshot")
	}

	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("打开快照失败: %w", err)
		}
		defer f.Close()
		r = f
	}

	var snap model.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("解析快照失败: %w", err)
	}
	return &snap, nil
}

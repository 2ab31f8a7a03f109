package probe

import "github.com/jamesainslie/syncer/pkg/syncer/types"

// ClassifyExitCode maps an exit code of the checksum subcommand onto the error
// taxonomy. It returns nil for a zero exit code.
//
//	1     malformed remote path
//	3, 4  remote file (or its directory) does not exist
//	other generic tool failure carrying the code
func ClassifyExitCode(code int, remotePath string) error {
	switch code {
	case 0:
		return nil
	case 1:
		return &types.Error{Kind: types.KindRemotePathSyntax, Path: remotePath}
	case 3, 4:
		return &types.Error{Kind: types.KindRemoteFileNotFound, Path: remotePath}
	default:
		return &types.Error{Kind: types.KindRemoteToolFailure, Path: remotePath, Code: code}
	}
}

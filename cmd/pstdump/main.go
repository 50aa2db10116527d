// Command pstdump inspects Outlook PST/OST mailbox files: list the folder
// tree, dump a folder's messages, or extract a message's body and
// attachments to disk.
package main

func main() {
	execute()
}

// Package msgs implements the text grammar of Scratch remote sensor
// messages.
//
// A message body is a verb followed by a single space and its
// arguments. Arguments are separated by whitespace and are either a
// quoted string (an embedded quote is doubled), a number, a boolean
// literal (true or false), or a bare single-word string:
//
//	broadcast "start"
//	sensor-update "a ""quoted"" word" 5 "light" -1.25 "button" true
package msgs

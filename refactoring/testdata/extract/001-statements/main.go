package main

import "fmt"

func main() {
	a := 1
	x := a + 1
	y := x * 2
	fmt.Println(y)
}

func sign(n int) int {
	if n < 0 {
		return -1
	}
	return 1
}

func report(c bool) {
	x := 0
	if c {
		x = 1
		return
	}
	println(x)
}

//<<<<<extract,7,2,8,12,pass,ACCESS_TO_LOCAL
//<<<<<extract,13,2,15,3,fail,PartialReturn
//<<<<<extract,13,2,16,10,pass,RETURN_STATEMENT_VALUE
//<<<<<extract,7,7,7,12,pass,EXPRESSION
//<<<<<extract,9,3,9,16,fail,InvalidBoundary
//<<<<<extract,16,2,16,10,fail,SingleReturnNotExtractable
//<<<<<extract,22,3,23,9,fail,MultipleReturnCandidates
